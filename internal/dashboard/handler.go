package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageNames = []string{"dashboard.html", "register.html", "login.html", "edit.html", "table.html", "error.html"}

type Options struct {
	TokenTTL     time.Duration
	CookieSecure bool
}

type Handler struct {
	client *Client
	pages  map[string]*template.Template
	logger *slog.Logger
	opts   Options
}

func NewHandler(client *Client, logger *slog.Logger, opts Options) (*Handler, error) {
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Handler{
		client: client,
		pages:  pages,
		logger: logger,
		opts:   opts,
	}, nil
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	static, _ := fs.Sub(staticFS, "static")
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	router.Get("/dashboard", h.Dashboard)
	router.Get("/dashboard/export.csv", h.ExportCSV)
	router.Get("/register", h.RegisterForm)
	router.Post("/register", h.Register)
	router.Get("/login", h.LoginForm)
	router.Post("/login", h.Login)
	router.Post("/logout", h.Logout)
	router.Get("/users/{id}/edit", h.EditForm)
	router.Post("/users/{id}/edit", h.Edit)
	router.Post("/users/{id}/delete", h.Delete)
	router.Get("/users/{id}/table", h.Table)
}

type layout struct {
	Title    string
	LoggedIn bool
	Flash    string
}

type dashboardPage struct {
	layout
	Query string
	Users View[[]User]
	// Shown marks the users matching Query. Every user is rendered so the
	// page script can refilter in place.
	Shown   map[string]bool
	Matches int
}

type formPage struct {
	layout
	ID     string
	Form   UserForm
	Error  string
	Fields map[string]string
}

type tablePage struct {
	layout
	User    User
	Entries View[[]Entry]
}

type errorPage struct {
	layout
	Message string
}

func (h *Handler) base(r *http.Request, title string) layout {
	return layout{
		Title:    title,
		LoggedIn: tokenFromRequest(r) != "",
		Flash:    r.URL.Query().Get("flash"),
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	users := Load(r.Context(), h.client.ListUsers)
	if users.IsError() {
		h.logger.Warn("failed to load users", "error", users.Err)
	}
	page := dashboardPage{
		layout: h.base(r, "Students"),
		Query:  q,
		Users:  users,
		Shown:  map[string]bool{},
	}
	if users.IsLoaded() {
		for _, u := range Filter(users.Data, q) {
			page.Shown[u.ID] = true
		}
		page.Matches = len(page.Shown)
	}

	h.render(w, http.StatusOK, "dashboard.html", page)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	users, err := h.client.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to load users for export", "error", err)
		h.renderError(w, r, http.StatusBadGateway, ErrorMessage(err))
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, Filter(users, r.URL.Query().Get("q"))); err != nil {
		h.logger.Error("failed to write csv", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "could not export users")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register.html", formPage{layout: h.base(r, "Register")})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form := readUserForm(r)
	form.Email = strings.TrimSpace(r.PostFormValue("email"))
	form.Password = r.PostFormValue("password")

	if err := h.client.Register(r.Context(), form); err != nil {
		form.Password = ""
		h.renderForm(w, r, "register.html", "Register", "", form, err)
		return
	}

	http.Redirect(w, r, "/login?flash=Registration+successful.+Please+log+in.", http.StatusSeeOther)
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", formPage{layout: h.base(r, "Log in")})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	session, err := h.client.Login(r.Context(), email, r.PostFormValue("password"), browserAddr(r))
	if err != nil {
		h.renderForm(w, r, "login.html", "Log in", "", UserForm{Email: email}, err)
		return
	}

	SetAuthCookie(w, session.Token, h.opts.TokenTTL, h.opts.CookieSecure)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearAuthCookie(w, h.opts.CookieSecure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	if tokenFromRequest(r) == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.client.FindUser(r.Context(), id)
	if err != nil {
		h.renderError(w, r, statusFor(err), ErrorMessage(err))
		return
	}

	h.render(w, http.StatusOK, "edit.html", formPage{
		layout: h.base(r, "Edit "+u.Name),
		ID:     id,
		Form: UserForm{
			Name:        u.Name,
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
			Grade:       u.Grade,
			Year:        u.Year,
		},
	})
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id := chi.URLParam(r, "id")
	form := readUserForm(r)
	if _, err := h.client.UpdateUser(r.Context(), token, id, form); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			ClearAuthCookie(w, h.opts.CookieSecure)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		form.Email = r.PostFormValue("email")
		h.renderForm(w, r, "edit.html", "Edit user", id, form, err)
		return
	}

	http.Redirect(w, r, "/dashboard?flash=User+updated.", http.StatusSeeOther)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.client.DeleteUser(r.Context(), token, chi.URLParam(r, "id")); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			ClearAuthCookie(w, h.opts.CookieSecure)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.renderError(w, r, statusFor(err), ErrorMessage(err))
		return
	}

	http.Redirect(w, r, "/dashboard?flash=User+deleted.", http.StatusSeeOther)
}

func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.client.FindUser(r.Context(), id)
	if err != nil {
		h.renderError(w, r, statusFor(err), ErrorMessage(err))
		return
	}

	h.render(w, http.StatusOK, "table.html", tablePage{
		layout: h.base(r, u.Name+" grade table"),
		User:   *u,
		Entries: Load(r.Context(), func(ctx context.Context) ([]Entry, error) {
			return h.client.ListEntries(ctx, id)
		}),
	})
}

// browserAddr is the socket address of the browser. Forwarding headers
// sent by the browser are not believed.
func browserAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func readUserForm(r *http.Request) UserForm {
	return UserForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		PhoneNumber: strings.TrimSpace(r.PostFormValue("phoneNumber")),
		Grade:       strings.TrimSpace(r.PostFormValue("grade")),
		Year:        strings.TrimSpace(r.PostFormValue("year")),
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, page, title, id string, form UserForm, err error) {
	data := formPage{
		layout: h.base(r, title),
		ID:     id,
		Form:   form,
		Error:  ErrorMessage(err),
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		data.Fields = apiErr.Fields
	} else {
		h.logger.Error("records api call failed", "page", page, "error", err)
	}

	h.render(w, statusFor(err), page, data)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, status, "error.html", errorPage{
		layout:  h.base(r, "Error"),
		Message: message,
	})
}

// render executes into a buffer so a template failure never sends a partial page.
func (h *Handler) render(w http.ResponseWriter, status int, page string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// statusFor passes API client errors through and maps transport failures to 502.
func statusFor(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
