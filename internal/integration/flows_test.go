//go:build integration_test || all_tests

package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caminemosjuntos/counseling/internal/appointment"
)

var postLinkRe = regexp.MustCompile(`href="/post/(\d+)"`)

func (s *IntegrationTestSuite) TestRegisterLoginLogout() {
	t := s.T()
	b := s.newBrowser()

	email := gofakeit.Email()
	resp, _ := b.submit(t, "/register", "/register", url.Values{
		"email":    {email},
		"password": {"secret-pass"},
		"name":     {"Ana"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := b.get(t, "/about")
	assert.Contains(t, body, "Salir (Ana)")

	resp, _ = b.get(t, "/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = b.get(t, "/about")
	assert.Contains(t, body, `href="/login"`)

	// same email again
	resp, _ = b.submit(t, "/register", "/register", url.Values{
		"email":    {email},
		"password": {"other"},
		"name":     {"Ana 2"},
	})
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	_, body = b.get(t, "/login")
	assert.Contains(t, unescape(body), "El email ya se encuentra registrado, en su lugar iniciar sesión!")

	resp, _ = b.submit(t, "/login", "/login", url.Values{"email": {email}, "password": {"wrong"}})
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	_, body = b.get(t, "/login")
	assert.Contains(t, body, "Contraseña incorrecta, por favor, intente nuevamente.")

	b.login(t, email, "secret-pass")

	// logged in, but not the admin
	resp, _ = b.get(t, "/new-post")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = b.get(t, "/get-all-appointments")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestPostLifecycle() {
	t := s.T()
	admin := s.newBrowser()
	admin.login(t, adminEmail, adminPassword)

	title := fmt.Sprintf("Post %d", time.Now().UnixNano())
	resp, _ := admin.submit(t, "/new-post", "/new-post", url.Values{
		"title":    {title},
		"subtitle": {"Un subtítulo"},
		"img_url":  {"https://example.com/img.jpg"},
		"body":     {"<p>Hola</p><script>alert(1)</script>"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, index := admin.get(t, "/")
	require.Contains(t, index, title)
	match := postLinkRe.FindStringSubmatch(index)
	require.Len(t, match, 2)
	postPath := "/post/" + match[1]

	_, body := admin.get(t, postPath)
	assert.Contains(t, body, "<p>Hola</p>")
	assert.NotContains(t, body, "<script>alert(1)</script>")

	resp, _ = admin.submit(t, "/edit-post/"+match[1], "/edit-post/"+match[1], url.Values{
		"title":    {title + " editado"},
		"subtitle": {"Otro subtítulo"},
		"img_url":  {"https://example.com/img.jpg"},
		"body":     {"<p>Nuevo</p>"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, postPath, resp.Header.Get("Location"))

	// a regular user comments
	reader := s.newBrowser()
	email := gofakeit.Email()
	resp, _ = reader.submit(t, "/register", "/register", url.Values{
		"email":    {email},
		"password": {"pass"},
		"name":     {"Lectora"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = reader.submit(t, postPath, postPath, url.Values{"comment_text": {"Gracias por compartir"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = reader.get(t, postPath)
	assert.Contains(t, body, title+" editado")
	assert.Contains(t, body, "Gracias por compartir")
	assert.Contains(t, body, "Lectora")

	resp, _ = admin.get(t, "/delete/"+match[1])
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = admin.get(t, postPath)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestAppointmentBooking() {
	t := s.T()
	client := s.newBrowser()
	email := gofakeit.Email()

	resp, _ := client.submit(t, "/register", "/register", url.Values{
		"email":    {email},
		"password": {"pass"},
		"name":     {"Cliente"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	date := appointment.Rules{Location: time.UTC}.MinDate(time.Now())
	booking := url.Values{
		"name":  {"Cliente"},
		"email": {email},
		"phone": {"1155554444"},
		"date":  {date},
		"hour":  {"12:00"},
	}

	// smtp is down in this setup, the booking stands anyway
	resp, body := client.submit(t, "/appointment", "/appointment", booking)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "¡Turno confirmado!")

	resp, _ = client.submit(t, "/appointment", "/appointment", booking)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/appointment", resp.Header.Get("Location"))
	_, body = client.get(t, "/appointment")
	assert.Contains(t, body, "La fecha ya fue seleccionada")

	admin := s.newBrowser()
	admin.login(t, adminEmail, adminPassword)
	_, body = admin.get(t, "/get-all-appointments")
	assert.Contains(t, body, email)

	deleteLink := regexp.MustCompile(`href="/delete_date/(\d+)"`).FindStringSubmatch(body)
	require.Len(t, deleteLink, 2)
	resp, _ = admin.get(t, "/delete_date/"+deleteLink[1])
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = admin.get(t, "/get-all-appointments")
	assert.NotContains(t, body, email)

	// the slot is free again
	resp, _ = client.submit(t, "/appointment", "/appointment", booking)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestAnonymousCannotBook() {
	t := s.T()
	b := s.newBrowser()

	resp, _ := b.submit(t, "/appointment", "/appointment", url.Values{
		"name":  {"X"},
		"email": {"x@example.com"},
		"phone": {"1"},
		"date":  {appointment.Rules{Location: time.UTC}.MinDate(time.Now())},
		"hour":  {"10:00"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
