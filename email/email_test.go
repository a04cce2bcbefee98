package email

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	calls int
	err   error
}

func (s *stubSender) Send(to, subject, html string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "stub-id", nil
}

func TestServicePrimarySucceeds(t *testing.T) {
	primary := &stubSender{}
	fallback := &stubSender{}
	service := NewService(primary, fallback)

	id, err := service.Send("a@example.pt", "Assunto", "<p>corpo</p>")
	require.NoError(t, err)
	assert.Equal(t, "stub-id", id)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls, "fallback untouched when primary succeeds")
}

func TestServiceFallsBack(t *testing.T) {
	primary := &stubSender{err: errors.New("sendgrid down")}
	fallback := &stubSender{}
	service := NewService(primary, fallback)

	id, err := service.Send("a@example.pt", "Assunto", "<p>corpo</p>")
	require.NoError(t, err)
	assert.Equal(t, "stub-id", id)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestServiceBothFail(t *testing.T) {
	primary := &stubSender{err: errors.New("primary down")}
	fallback := &stubSender{err: errors.New("fallback down")}
	service := NewService(primary, fallback)

	_, err := service.Send("a@example.pt", "Assunto", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary down")
	assert.Contains(t, err.Error(), "fallback down")

	// One attempt each, no retries.
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestServiceNoFallback(t *testing.T) {
	primary := &stubSender{err: errors.New("down")}
	service := NewService(primary, nil)

	_, err := service.Send("a@example.pt", "Assunto", "x")
	assert.Error(t, err)
}

func TestRenderAlertEscapesContent(t *testing.T) {
	subject, body := RenderAlert(AlertContent{
		Title:    "Nova venda registada",
		Message:  "Detalhes <script>alert(1)</script>",
		SaleCode: "ALB000103",
		Partner:  "Martins & Filhos",
	})

	assert.Equal(t, "Nova venda registada - ALB000103", subject)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "Martins &amp; Filhos")
	assert.Contains(t, body, "ALB000103")
}
