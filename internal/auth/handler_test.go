package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aquamarinepk/aqm"
	authpkg "github.com/aquamarinepk/aqm/auth"
)

var testSecret = []byte("test-signing-secret")

func newTestHandler(users UserRepo) *Handler {
	deps := HandlerDeps{
		Users:    users,
		Sessions: NewSessionStore(time.Hour),
		Secret:   testSecret,
	}
	return NewHandler(deps, aqm.NewConfig(), nil)
}

func signinRequest(email, password string) *http.Request {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	return httptest.NewRequest(http.MethodPost, "/admin/signin", bytes.NewReader(body))
}

func TestHandlerSignIn(t *testing.T) {
	tests := []struct {
		name           string
		email          string
		password       string
		setupRepo      func(*MockUserRepo)
		expectedStatus int
		wantCookie     bool
	}{
		{
			name:     "validCredentials",
			email:    "admin@example.com",
			password: "correct-password",
			setupRepo: func(repo *MockUserRepo) {
				repo.users["admin@example.com"] = newActiveUser(t, "admin@example.com", "correct-password")
			},
			expectedStatus: http.StatusOK,
			wantCookie:     true,
		},
		{
			name:     "mixedCaseEmail",
			email:    "Admin@Example.COM",
			password: "correct-password",
			setupRepo: func(repo *MockUserRepo) {
				repo.users["admin@example.com"] = newActiveUser(t, "admin@example.com", "correct-password")
			},
			expectedStatus: http.StatusOK,
			wantCookie:     true,
		},
		{
			name:     "wrongPassword",
			email:    "admin@example.com",
			password: "wrong-password",
			setupRepo: func(repo *MockUserRepo) {
				repo.users["admin@example.com"] = newActiveUser(t, "admin@example.com", "correct-password")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknownUser",
			email:          "ghost@example.com",
			password:       "whatever",
			setupRepo:      func(repo *MockUserRepo) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:     "suspendedUser",
			email:    "admin@example.com",
			password: "correct-password",
			setupRepo: func(repo *MockUserRepo) {
				user := newActiveUser(t, "admin@example.com", "correct-password")
				user.Status = authpkg.UserStatus("suspended")
				repo.users["admin@example.com"] = user
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missingFields",
			email:          "",
			password:       "",
			setupRepo:      func(repo *MockUserRepo) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepo()
			tt.setupRepo(repo)
			h := newTestHandler(repo)

			w := httptest.NewRecorder()
			h.SignIn(w, signinRequest(tt.email, tt.password))

			if w.Code != tt.expectedStatus {
				t.Errorf("SignIn() status = %d, want %d", w.Code, tt.expectedStatus)
			}

			cookies := w.Result().Cookies()
			hasSessionCookie := false
			for _, c := range cookies {
				if c.Name == DefaultCookieName && c.Value != "" {
					hasSessionCookie = true
					if !c.HttpOnly {
						t.Error("session cookie must be HttpOnly")
					}
				}
			}
			if hasSessionCookie != tt.wantCookie {
				t.Errorf("session cookie set = %v, want %v", hasSessionCookie, tt.wantCookie)
			}
		})
	}
}

func TestHandlerSignInInvalidJSON(t *testing.T) {
	h := newTestHandler(NewMockUserRepo())

	req := httptest.NewRequest(http.MethodPost, "/admin/signin", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	h.SignIn(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("SignIn() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandlerSignOut(t *testing.T) {
	repo := NewMockUserRepo()
	repo.users["admin@example.com"] = newActiveUser(t, "admin@example.com", "correct-password")
	h := newTestHandler(repo)

	// Establish a session first.
	w := httptest.NewRecorder()
	h.SignIn(w, signinRequest("admin@example.com", "correct-password"))
	if w.Code != http.StatusOK {
		t.Fatalf("SignIn() status = %d, want %d", w.Code, http.StatusOK)
	}

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("signin did not set a session cookie")
	}

	sessionID, err := parseToken(testSecret, sessionCookie.Value)
	if err != nil {
		t.Fatalf("parseToken() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/signout", nil)
	req.AddCookie(sessionCookie)
	w = httptest.NewRecorder()
	h.SignOut(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("SignOut() status = %d, want %d", w.Code, http.StatusSeeOther)
	}

	if _, err := h.sessions.Get(sessionID); err == nil {
		t.Error("session must be removed on signout")
	}

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("signout must clear the session cookie")
	}
}

func TestSessionMiddleware(t *testing.T) {
	repo := NewMockUserRepo()
	repo.users["admin@example.com"] = newActiveUser(t, "admin@example.com", "correct-password")
	h := newTestHandler(repo)

	w := httptest.NewRecorder()
	h.SignIn(w, signinRequest("admin@example.com", "correct-password"))
	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("signin did not set a session cookie")
	}

	var gotSession *Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = SessionFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := h.SessionMiddleware(next)

	tests := []struct {
		name           string
		prepare        func(req *http.Request)
		expectedStatus int
		wantSession    bool
	}{
		{
			name: "validCookie",
			prepare: func(req *http.Request) {
				req.AddCookie(sessionCookie)
			},
			expectedStatus: http.StatusOK,
			wantSession:    true,
		},
		{
			name:           "missingCookieBrowser",
			prepare:        func(req *http.Request) {},
			expectedStatus: http.StatusSeeOther,
		},
		{
			name: "missingCookieAPI",
			prepare: func(req *http.Request) {
				req.Header.Set("Accept", "application/json")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "forgedCookie",
			prepare: func(req *http.Request) {
				forged, _ := issueToken([]byte("attacker-secret"), "session-x", time.Hour)
				req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: forged})
				req.Header.Set("Accept", "application/json")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "validTokenUnknownSession",
			prepare: func(req *http.Request) {
				orphan, _ := issueToken(testSecret, "session-gone", time.Hour)
				req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: orphan})
				req.Header.Set("Accept", "application/json")
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSession = nil
			req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
			tt.prepare(req)

			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("middleware status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if tt.wantSession && (gotSession == nil || gotSession.Email != "admin@example.com") {
				t.Error("session missing from the request context")
			}
		})
	}
}

func TestUserPasswordCheck(t *testing.T) {
	user := NewUser()
	if err := user.SetPassword("hunter2"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}

	if !user.CheckPassword("hunter2") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if user.CheckPassword("hunter3") {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

func TestUserBeforeCreateNormalizesEmail(t *testing.T) {
	user := NewUser()
	user.Email = "  Admin@Example.COM "
	user.Name = " Admin "
	user.BeforeCreate()

	if user.Email != "admin@example.com" {
		t.Errorf("Email = %q, want admin@example.com", user.Email)
	}
	if user.Name != "Admin" {
		t.Errorf("Name = %q, want Admin", user.Name)
	}
}
