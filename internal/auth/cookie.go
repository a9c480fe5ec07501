package auth

import (
	"net/http"
	"time"
)

const adminCookie = "_admin"

func VerifyAdmin(r *http.Request, secret []byte) (string, error) {
	cookie, err := r.Cookie(adminCookie)
	if err != nil {
		return "", err
	}
	return GetLogin(cookie.Value, secret)
}

func SetAuthCookie(login string, w http.ResponseWriter, secret []byte, TTLSeconds int) error {

	token, err := BuildJWTString(login, secret, time.Duration(TTLSeconds)*time.Second)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{Name: adminCookie, Value: token, MaxAge: TTLSeconds, HttpOnly: true, Path: "/"}
	http.SetCookie(w, cookie)
	return nil
}
