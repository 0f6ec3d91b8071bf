package email

import (
	"fmt"
	"strings"
)

const (
	contactSubject      = "Nuevo Mensaje"
	confirmationSubject = "Turno confirmado"
)

// Message is a plain text email; From is always the site address
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

type ContactRequest struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// ContactMessage forwards a contact form to the site inbox, replies go to the visitor
func ContactMessage(siteEmail string, req ContactRequest) Message {
	return Message{
		To:      []string{siteEmail},
		ReplyTo: req.Email,
		Subject: contactSubject,
		Body: fmt.Sprintf(
			"Nombre: %s\nEmail: %s\nTelefono: %s\nMensaje:%s",
			req.Name, req.Email, req.Phone, req.Message,
		),
	}
}

type Booking struct {
	Name  string
	Email string
	Phone string
	Date  string
	Hour  string
}

// AppointmentConfirmation goes to the client, with a copy for the site inbox
func AppointmentConfirmation(siteEmail string, b Booking) Message {
	var body strings.Builder
	fmt.Fprintf(&body, "Nombre: %s \nTeléfono: %s \nEmail: %s \nCuándo: %s\nHorario:%s\n\n\n", b.Name, b.Phone, b.Email, b.Date, b.Hour)
	body.WriteString("El link de ingreso será enviado previo al encuentro.\n")
	body.WriteString("Si necesitás cancelar la cita, deberás hacerlo con 24 horas de anticipación a través de este mail.\n")
	body.WriteString("¡Gracias por elegirnos!\n Caminemos Juntos Counseling\n Todos los derechos reservados.")

	return Message{
		To:      []string{b.Email, siteEmail},
		Subject: confirmationSubject,
		Body:    body.String(),
	}
}
