package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docpdf/internal/handlers"
	"docpdf/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	pm := middlewares.NewPrometheusMiddleware()
	r.Use(middlewares.CorsMiddleware)
	r.Use(middlewares.RateLimit)
	r.Use(pm.Instrument)

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler)
	r.HandleFunc("/health", ch.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	s.registerAuthRoutes(r)
	s.registerCollectionRoutes(r)
	s.registerDocumentRoutes(r)
	s.registerChatRoutes(r)

	return r
}

func (s *Server) registerAuthRoutes(r *mux.Router) {
	uh := handlers.NewUserHandler(s.userService)

	r.HandleFunc("/api/auth/register", uh.RegisterUser).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/login", uh.LoginUser).Methods("POST", "OPTIONS")
	r.Handle("/api/auth/verify", middlewares.AuthMiddleware(http.HandlerFunc(uh.VerifyToken))).Methods("GET", "OPTIONS")
}

func (s *Server) registerCollectionRoutes(r *mux.Router) {
	clh := handlers.NewCollectionHandler(s.collectionService)

	r.Handle("/api/collections", middlewares.AuthMiddleware(http.HandlerFunc(clh.AddCollection))).Methods("POST", "OPTIONS")
	r.Handle("/api/collections", middlewares.AuthMiddleware(http.HandlerFunc(clh.GetCollections))).Methods("GET", "OPTIONS")
	r.Handle("/api/collections/{id}", middlewares.AuthMiddleware(http.HandlerFunc(clh.GetCollection))).Methods("GET", "OPTIONS")
	r.Handle("/api/collections/{id}", middlewares.AuthMiddleware(http.HandlerFunc(clh.UpdateCollection))).Methods("PUT", "OPTIONS")
	r.Handle("/api/collections/{id}", middlewares.AuthMiddleware(http.HandlerFunc(clh.DeleteCollection))).Methods("DELETE", "OPTIONS")

	r.Handle("/api/collections/{id}/members", middlewares.AuthMiddleware(http.HandlerFunc(clh.GetMembers))).Methods("GET", "OPTIONS")
	r.Handle("/api/collections/{id}/members", middlewares.AuthMiddleware(http.HandlerFunc(clh.AddMember))).Methods("POST", "OPTIONS")
	r.Handle("/api/collections/{id}/members/{userId}", middlewares.AuthMiddleware(http.HandlerFunc(clh.UpdateMemberRole))).Methods("PUT", "OPTIONS")
	r.Handle("/api/collections/{id}/members/{userId}", middlewares.AuthMiddleware(http.HandlerFunc(clh.RemoveMember))).Methods("DELETE", "OPTIONS")

	r.Handle("/api/collections/{id}/share", middlewares.AuthMiddleware(http.HandlerFunc(clh.GetShareInfo))).Methods("GET", "OPTIONS")
	r.Handle("/api/collections/{id}/share", middlewares.AuthMiddleware(http.HandlerFunc(clh.ManageShareLink))).Methods("POST", "OPTIONS")
	r.Handle("/api/collections/{id}/share", middlewares.AuthMiddleware(http.HandlerFunc(clh.UpdateShareSettings))).Methods("PUT", "OPTIONS")

	r.Handle("/api/collections/{id}/stats", middlewares.AuthMiddleware(http.HandlerFunc(clh.GetStats))).Methods("GET", "OPTIONS")
}

func (s *Server) registerDocumentRoutes(r *mux.Router) {
	dh := handlers.NewDocumentHandler(s.documentService)

	r.Handle("/api/documents", middlewares.AuthMiddleware(http.HandlerFunc(dh.GetDocuments))).Methods("GET", "OPTIONS")
	r.Handle("/api/documents/upload", middlewares.AuthMiddleware(http.HandlerFunc(dh.UploadDocument))).Methods("POST", "OPTIONS")
	r.Handle("/api/documents/{id}", middlewares.AuthMiddleware(http.HandlerFunc(dh.GetDocument))).Methods("GET", "OPTIONS")
	r.Handle("/api/documents/{id}", middlewares.AuthMiddleware(http.HandlerFunc(dh.UpdateDocument))).Methods("PUT", "OPTIONS")
	r.Handle("/api/documents/{id}", middlewares.AuthMiddleware(http.HandlerFunc(dh.DeleteDocument))).Methods("DELETE", "OPTIONS")
	r.Handle("/api/documents/{id}/download", middlewares.AuthMiddleware(http.HandlerFunc(dh.DownloadDocument))).Methods("GET", "OPTIONS")
}

func (s *Server) registerChatRoutes(r *mux.Router) {
	ch := handlers.NewChatHandler(s.chatService)

	r.Handle("/api/documents/{id}/chat", middlewares.AuthMiddleware(http.HandlerFunc(ch.SendMessage))).Methods("POST", "OPTIONS")
	r.Handle("/api/documents/{id}/chat", middlewares.AuthMiddleware(http.HandlerFunc(ch.GetHistory))).Methods("GET", "OPTIONS")
}
