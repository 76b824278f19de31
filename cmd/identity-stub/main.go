// This is a **mock identity provider**, issuing JWT tokens and serving
// the admin user-lookup endpoint for local development of the board.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/openhire/hireboard/internal/board/auth"
	"github.com/openhire/hireboard/internal/board/identity"
)

const (
	defaultPort   = "8081"
	defaultSecret = "jwt_secret"
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token string `json:"token"`
}

func secret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return defaultSecret
}

// tokenHandler generates a JWT for the requested user and returns it in
// a JSON response.
func tokenHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "dev-user"
	}

	token, err := auth.GenerateToken(userID, secret())
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	resp := TokenResponse{Token: token}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(resp)
	if err != nil {
		http.Error(w, "Failed to encode token", http.StatusInternalServerError)
	}
}

// userHandler serves the admin lookup the board's directory client
// calls, echoing a canned record for any id.
func userHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/users/")
	if id == "" {
		http.Error(w, "user id required", http.StatusBadRequest)
		return
	}
	user := identity.User{
		ID:    id,
		Email: id + "@example.test",
		Name:  "Dev User",
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(user); err != nil {
		http.Error(w, "Failed to encode user", http.StatusInternalServerError)
	}
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	http.HandleFunc("/token", tokenHandler)
	http.HandleFunc("/admin/users/", userHandler)

	log.Printf("Identity stub running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}
