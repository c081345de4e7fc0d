package load

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// Заголовок, по которому сервер отличает клиентские запросы
const (
	originHeader = "X-Origin"
	originClient = "client"
)

// Session хранит cookie сессии, полученные при аутентификации
type Session struct {
	Cookies []*http.Cookie
}

// apply добавляет cookie сессии к запросу
func (s *Session) apply(req *http.Request) {
	if s == nil {
		return
	}
	for _, cookie := range s.Cookies {
		req.AddCookie(cookie)
	}
}

// Authenticator получает сессию администратора на продакшн-сервере
type Authenticator struct {
	client  *http.Client
	url     string
	logger  *utils.ETLLogger
	console *utils.Console
}

// NewAuthenticator создает новый экземпляр Authenticator
func NewAuthenticator(client *http.Client, url string, logger *utils.ETLLogger, console *utils.Console) *Authenticator {
	return &Authenticator{
		client:  client,
		url:     url,
		logger:  logger,
		console: console,
	}
}

type credentials struct {
	UID      string `json:"uid"`
	Password string `json:"password"`
}

// Authenticate выполняет вход и возвращает сессию.
// Ошибка сети или статус не 2xx возвращаются как *models.AuthError, повторов нет.
func (a *Authenticator) Authenticate(ctx context.Context, uid, password string) (*Session, error) {
	a.console.Printf("  Authenticating as: %s\n", uid)

	body, err := json.Marshal(credentials{UID: uid, Password: password})
	if err != nil {
		return nil, &models.AuthError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, &models.AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(originHeader, originClient)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("Ошибка запроса аутентификации: %v", err)
		return nil, &models.AuthError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Error("Аутентификация отклонена, статус %d", resp.StatusCode)
		return nil, &models.AuthError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), a.url),
		}
	}

	a.console.Println("  ✓ Authentication successful")
	a.logger.Info("Аутентификация успешна, uid=%s", uid)
	return &Session{Cookies: resp.Cookies()}, nil
}
