package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes 註冊所有 REST 路由，auth 用於需要 session 的路由
func RegisterRoutes(router *mux.Router, h *Handler, auth mux.MiddlewareFunc) {
	// 健康檢查路由
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Backend is running!")
	}).Methods(http.MethodGet)

	router.HandleFunc("/preferences", h.ListPreferences).Methods(http.MethodGet)

	router.HandleFunc("/rooms", h.CreateRoom).Methods(http.MethodPost)
	router.HandleFunc("/rooms/{code}", h.GetRoom).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{code}/users", h.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{code}/users", h.JoinRoom).Methods(http.MethodPost)
	router.HandleFunc("/rooms/{code}/restaurants", h.ListRestaurants).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{code}/matches", h.ListMatches).Methods(http.MethodGet)

	// 需要 session 的路由
	router.Handle("/session", auth(http.HandlerFunc(h.GetSession))).Methods(http.MethodGet)
	router.Handle("/rooms/{code}/users/me/preferences", auth(http.HandlerFunc(h.SetPreferences))).Methods(http.MethodPut)
	router.Handle("/rooms/{code}/users/me/done", auth(http.HandlerFunc(h.MarkDone))).Methods(http.MethodPost)
	router.Handle("/rooms/{code}/users/me", auth(http.HandlerFunc(h.LeaveRoom))).Methods(http.MethodDelete)
	router.Handle("/rooms/{code}/swipes", auth(http.HandlerFunc(h.RecordSwipe))).Methods(http.MethodPost)
	router.Handle("/rooms/{code}/advance", auth(http.HandlerFunc(h.AdvanceRoom))).Methods(http.MethodPost)
}
