package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	claimsHandler := &ClaimsHandler{DB: db}
	matchesHandler := &MatchesHandler{DB: db}
	notificationsHandler := &NotificationsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireRole(model.RoleStaff)

	// Public: signup and login.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Item reports: anyone signed in can report and browse, staff can delete.
	mux.Handle("POST /api/items/lost", authMW(http.HandlerFunc(itemsHandler.ReportLost)))
	mux.Handle("POST /api/items/found", authMW(http.HandlerFunc(itemsHandler.ReportFound)))
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/mine", authMW(http.HandlerFunc(itemsHandler.Mine)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("DELETE /api/items/{id}", authMW(requireStaff(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("PUT /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.UploadPhoto)))
	mux.Handle("GET /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.GetPhoto)))

	// Candidate matches for a report, and the "I found this" shortcut.
	mux.Handle("GET /api/items/{id}/matches", authMW(http.HandlerFunc(itemsHandler.Matches)))
	mux.Handle("POST /api/items/{id}/found-report", authMW(http.HandlerFunc(itemsHandler.FoundReport)))

	// Claims: owners file them, staff decide them.
	mux.Handle("POST /api/items/{id}/claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.Handle("GET /api/claims", authMW(requireStaff(http.HandlerFunc(claimsHandler.List))))
	mux.Handle("GET /api/claims/mine", authMW(http.HandlerFunc(claimsHandler.Mine)))
	mux.Handle("GET /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Get)))
	mux.Handle("POST /api/claims/{id}/decision", authMW(requireStaff(http.HandlerFunc(claimsHandler.Decide))))
	mux.Handle("POST /api/claims/{id}/returned", authMW(requireStaff(http.HandlerFunc(claimsHandler.MarkReturned))))

	// Potential matches (staff only).
	mux.Handle("GET /api/matches/pending", authMW(requireStaff(http.HandlerFunc(matchesHandler.Pending))))
	mux.Handle("POST /api/matches/{id}/decision", authMW(requireStaff(http.HandlerFunc(matchesHandler.Decide))))

	// Notifications (own only).
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("POST /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))

	return mux
}
