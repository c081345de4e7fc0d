package fakeremote

import (
	"github.com/gorilla/mux"
)

// Пути API продакшн-сервера
const (
	AuthPath         = "/api/authenticate"
	ImportPathPrefix = "/api/export/import/"
)

// SessionCookie - имя cookie сессии, которую выдаёт сервер
const SessionCookie = "jwt_python_flask"

// SetupRoutes настраивает маршруты аутентификации и импорта
func SetupRoutes(router *mux.Router, s *Server) {
	router.HandleFunc(AuthPath, s.handleAuthenticate).Methods("POST")
	router.HandleFunc(ImportPathPrefix+"{category}", s.handleImport).Methods("POST")
}
