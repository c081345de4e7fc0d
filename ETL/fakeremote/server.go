// Package fakeremote поднимает в памяти сервер с API аутентификации и импорта
// продакшн-сервера. Используется в тестах загрузки и всего процесса переноса.
package fakeremote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Response - заранее заданный ответ эндпоинта импорта
type Response struct {
	Status int
	Body   string
	Delay  time.Duration
}

// Request - принятый запрос импорта
type Request struct {
	Category string
	Records  []map[string]interface{}
	Origin   string
}

// Server - поддельный продакшн-сервер
type Server struct {
	*httptest.Server

	uid      string
	password string

	mu           sync.Mutex
	responses    map[string]Response
	requests     []Request
	authAttempts int
}

// New запускает сервер, принимающий указанные учётные данные
func New(uid, password string) *Server {
	s := &Server{
		uid:       uid,
		password:  password,
		responses: make(map[string]Response),
	}

	router := mux.NewRouter()
	SetupRoutes(router, s)
	s.Server = httptest.NewServer(router)
	return s
}

// SetResponse задаёт ответ для категории вместо ответа по умолчанию
func (s *Server) SetResponse(category string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[category] = resp
}

// Requests возвращает принятые запросы импорта в порядке поступления
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Categories возвращает категории принятых запросов импорта в порядке поступления
func (s *Server) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		categories = append(categories, r.Category)
	}
	return categories
}

// AuthAttempts возвращает число запросов аутентификации
func (s *Server) AuthAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authAttempts
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.authAttempts++
	s.mu.Unlock()

	var creds struct {
		UID      string `json:"uid"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if creds.UID != s.uid || creds.Password != s.password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "token-" + creds.UID, Path: "/"})
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"message":"Authentication successful"}`)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]

	if cookie, err := r.Cookie(SessionCookie); err != nil || cookie.Value != "token-"+s.uid {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload map[string][]map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	records := payload[category]

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Category: category,
		Records:  records,
		Origin:   r.Header.Get("X-Origin"),
	})
	resp, custom := s.responses[category]
	s.mu.Unlock()

	if !custom {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{%q: {"imported": %d, "failed": 0, "errors": []}}`, category, len(records))
		return
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, resp.Body)
}
