package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"portfolio/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSession builds a session holding the given permissions.
func BuildSession(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user-" + types.ID(uid).String()},
		Perms:    perms,
		Context:  context.Background(),
	}
}

// ExecuteRequest runs the request against the engine and returns status, body
// and response.
func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, *http.Response) {
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	resp := recorder.Result()
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, string(bodyBytes), resp
}
