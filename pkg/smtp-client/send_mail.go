package smtp_client

import (
	"log/slog"
	"net/textproto"

	"github.com/knadh/smtppool"
)

// HeaderOverrides replaces the sender headers of the server list for one mail.
type HeaderOverrides struct {
	From      string   `json:"from"`
	Sender    string   `json:"sender"`
	ReplyTo   []string `json:"replyTo"`
	NoReplyTo bool     `json:"noReplyTo"`
}

// SendMail sends an html mail through the next server of the pool, round robin.
// A failed send replaces that server's pool with a fresh connection.
func (sc *SmtpClients) SendMail(
	to []string,
	subject string,
	htmlContent string,
	overrides *HeaderOverrides,
) error {
	sc.mu.Lock()
	sc.counter += 1
	index := int(sc.counter % uint64(len(sc.connectionPool)))
	selected := sc.connectionPool[index]
	sc.mu.Unlock()

	err := selected.pool.Send(sc.buildEmail(to, subject, htmlContent, overrides))
	if err != nil {
		slog.Error("error when trying to send email", slog.String("error", err.Error()), slog.String("server", selected.server.Host))

		pool, errReconnect := connectToPool(selected.server)
		if errReconnect != nil {
			slog.Error("cannot reconnect pool", slog.String("error", errReconnect.Error()), slog.String("server", selected.server.Host))
		} else {
			slog.Info("reconnected to pool", slog.String("server", selected.server.Host))
			sc.mu.Lock()
			sc.connectionPool[index].pool = pool
			sc.mu.Unlock()
			selected.pool.Close()
		}
	}
	return err
}

func (sc *SmtpClients) buildEmail(to []string, subject string, htmlContent string, overrides *HeaderOverrides) smtppool.Email {
	from := sc.servers.From
	sender := sc.servers.Sender
	replyTo := sc.servers.ReplyTo

	if overrides != nil {
		if overrides.From != "" {
			from = overrides.From
		}
		if overrides.Sender != "" {
			sender = overrides.Sender
		}

		if overrides.NoReplyTo {
			replyTo = []string{}
		} else if len(overrides.ReplyTo) > 0 {
			replyTo = overrides.ReplyTo
		}
	}

	return smtppool.Email{
		To:      to,
		From:    from,
		Sender:  sender,
		ReplyTo: replyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: textproto.MIMEHeader{},
	}
}
