package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/Vovarama1992/dreamcatcher/internal/ports"
	"github.com/Vovarama1992/dreamcatcher/internal/prompts"
)

func RegisterRoutes(
	r chi.Router,
	hAuth *AuthHandler,
	hDreams *DreamHandler,
	hRec *RecorderHandler,
	hShell *ShellHandler,
	hPrompts *prompts.Handler,
	authSvc ports.AuthService,
	admins []string,
) {
	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// --- auth ---
	r.Group(func(pub chi.Router) {
		pub.Use(
			httputil.RecoverMiddleware,
			httprate.LimitByIP(20, time.Minute),
		)
		pub.Post("/auth/register", hAuth.Register)
		pub.Post("/auth/login", hAuth.Login)
		pub.Get("/auth/verify", hAuth.Verify)
	})

	// --- protected ---
	r.Group(func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			AuthMiddleware(authSvc),
		)

		pr.Get("/auth/me", hAuth.Me)
		pr.Post("/auth/logout", hShell.Logout)
		pr.Get("/dashboard", hShell.Dashboard)

		// --- сны ---
		pr.Get("/dreams", hDreams.List)

		// --- рекордер ---
		pr.Get("/recorder", hRec.Status)
		pr.Post("/recorder/record", hRec.Record)
		pr.Post("/recorder/stop", hRec.Stop)
		pr.Post("/recorder/upload", hRec.Upload)
		pr.Delete("/recorder", hRec.Discard)

		// --- промпты (общие для всех, только админ) ---
		pr.Group(func(adm chi.Router) {
			adm.Use(AdminOnly(admins))
			adm.Get("/prompts", hPrompts.List)
			adm.Get("/prompts/{name}", hPrompts.Get)
			adm.Put("/prompts/{name}", hPrompts.Update)
		})
	})
}
