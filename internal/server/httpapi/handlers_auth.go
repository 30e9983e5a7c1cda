package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/dmitrijs2005/keygate/internal/common"
	"github.com/dmitrijs2005/keygate/internal/server/metrics"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readCredentials accepts a JSON body or an OAuth2 password-grant form.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return credentials{}, err
		}
		return credentials{Username: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}, nil
	}

	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return credentials{}, err
	}
	return c, nil
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tok, err := h.deps.Auth.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.deps.Metrics.RecordLogin(metrics.LoginInvalid)
		} else {
			h.deps.Metrics.RecordLogin(metrics.LoginError)
		}
		writeServiceError(w, err, nil)
		return
	}

	h.deps.Metrics.RecordLogin(metrics.LoginSuccess)
	writeJSON(w, http.StatusOK, tok)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"user": identityFrom(r.Context()).Username})
}

func (h *handlers) echo(w http.ResponseWriter, r *http.Request) {
	msg, ok := r.URL.Query()["msg"]
	if !ok {
		writeError(w, http.StatusBadRequest, "msg query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"echo": "The message is " + msg[0],
		"user": identityFrom(r.Context()).Username,
	})
}

func (h *handlers) greet(w http.ResponseWriter, r *http.Request) {
	today := h.deps.Now().UTC().Format("2006-01-02")
	writeJSON(w, http.StatusOK, map[string]string{
		"msg": "Hello " + identityFrom(r.Context()).Username + " today is " + today,
	})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
