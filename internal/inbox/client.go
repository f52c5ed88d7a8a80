// Package inbox turns unread mail into tasks. It reads a mailbox over IMAP,
// parses each message body, and maps the message to task fields.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// ErrAuth is returned when the server rejects the credentials.
var ErrAuth = errors.New("imap authentication failed")

// Config locates the mailbox.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	// TLS selects implicit TLS; otherwise STARTTLS is used.
	TLS bool
	// Mailbox defaults to INBOX.
	Mailbox string
}

// Message is an unread message with its body parsed.
type Message struct {
	UID       uint32
	MessageID string
	Subject   string
	FromName  string
	FromAddr  string
	Date      time.Time
	Text      string
	Parts     []Part
}

// Part is a file attached to a message.
type Part struct {
	Name string
	Type string
	Data []byte
}

// Client reads one mailbox. Each call opens its own connection.
type Client struct {
	cfg Config
}

// New creates a client for cfg.
func New(cfg Config) *Client {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Port == "" {
		cfg.Port = "993"
	}
	return &Client{cfg: cfg}
}

// connect dials, authenticates and selects the mailbox. The caller logs
// out of the returned client.
func (c *Client) connect() (*imapclient.Client, error) {
	addr := c.cfg.Host + ":" + c.cfg.Port

	var (
		client *imapclient.Client
		err    error
	)
	if c.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.cfg.Username, c.cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("%w for %s: %v", ErrAuth, c.cfg.Username, err)
	}

	if _, err := client.Select(c.cfg.Mailbox, nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting %s: %w", c.cfg.Mailbox, err)
	}
	return client, nil
}

// FetchUnseen returns up to limit unread messages, oldest first. Bodies are
// fetched with PEEK so the messages stay unread until MarkSeen.
func (c *Client) FetchUnseen(ctx context.Context, limit int) ([]Message, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	criteria := &imap.SearchCriteria{NotFlag: []imap.Flag{imap.FlagSeen}}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unread messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	body := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{body},
	})
	defer fetchCmd.Close()

	var out []Message
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		m := fromBuffer(buf)
		if raw := buf.FindBodySection(body); raw != nil {
			m.Text, m.Parts = Parse(raw)
		}
		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return out, fmt.Errorf("fetching messages: %w", err)
	}
	return out, nil
}

// MarkSeen flags the messages as read.
func (c *Client) MarkSeen(_ context.Context, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	client, err := c.connect()
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	set := make([]imap.UID, len(uids))
	for i, u := range uids {
		set[i] = imap.UID(u)
	}
	storeCmd := client.Store(imap.UIDSetNum(set...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := storeCmd.Close(); err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}
	return nil
}

func fromBuffer(buf *imapclient.FetchMessageBuffer) Message {
	m := Message{UID: uint32(buf.UID)}
	if env := buf.Envelope; env != nil {
		m.MessageID = env.MessageID
		m.Subject = env.Subject
		m.Date = env.Date
		if len(env.From) > 0 {
			m.FromName = env.From[0].Name
			m.FromAddr = env.From[0].Addr()
		}
	}
	return m
}
