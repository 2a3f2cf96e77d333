// Package gmail creates Gmail drafts on behalf of the signed-in recruiter,
// using OAuth tokens supplied by the frontend.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Options configures the draft service.
type Options struct {
	ClientID     string
	ClientSecret string
	Logger       *zap.Logger
}

// Service creates drafts with per-request user credentials.
type Service struct {
	clientID     string
	clientSecret string
	logger       *zap.Logger
}

// New constructs a Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{clientID: opts.ClientID, clientSecret: opts.ClientSecret, logger: logger}
}

// Attachment is a file attached to a draft.
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}

// DraftRequest describes the draft to create.
type DraftRequest struct {
	AccessToken  string
	RefreshToken string
	To           []string
	Subject      string
	BodyHTML     string
	Attachment   *Attachment
}

// Draft identifies the created draft.
type Draft struct {
	ID  string `json:"draft_id"`
	URL string `json:"draft_url"`
}

// CreateDraft builds the MIME message and creates the draft under the
// caller's account. When a refresh token and an OAuth client are available
// the token refreshes itself; otherwise the access token is used as-is.
func (s *Service) CreateDraft(ctx context.Context, req DraftRequest) (*Draft, error) {
	if req.AccessToken == "" && req.RefreshToken == "" {
		return nil, fmt.Errorf("gmail draft requires an access or refresh token")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("gmail draft requires a recipient")
	}

	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(s.tokenSource(ctx, req)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	raw, err := buildMIME(req)
	if err != nil {
		return nil, err
	}
	draft, err := svc.Users.Drafts.Create("me", &gmailapi.Draft{
		Message: &gmailapi.Message{Raw: base64.URLEncoding.EncodeToString(raw)},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	s.logger.Info("gmail draft created",
		zap.String("draft_id", draft.Id),
		zap.Int("recipients", len(req.To)),
		zap.Bool("has_attachment", req.Attachment != nil),
	)
	return &Draft{ID: draft.Id, URL: draftURL(draft.Message.Id)}, nil
}

func (s *Service) tokenSource(ctx context.Context, req DraftRequest) oauth2.TokenSource {
	if req.RefreshToken != "" && s.clientID != "" {
		cfg := &oauth2.Config{
			ClientID:     s.clientID,
			ClientSecret: s.clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmailapi.GmailComposeScope},
		}
		return cfg.TokenSource(ctx, &oauth2.Token{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
		})
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: req.AccessToken})
}

func draftURL(messageID string) string {
	return "https://mail.google.com/mail/u/0/#drafts?compose=" + messageID
}

// buildMIME assembles a multipart/mixed message with an HTML body and an
// optional base64 attachment.
func buildMIME(req DraftRequest) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(req.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", req.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	bodyHeader := textproto.MIMEHeader{}
	bodyHeader.Set("Content-Type", `text/html; charset="UTF-8"`)
	body, err := mw.CreatePart(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("create body part: %w", err)
	}
	if _, err := body.Write([]byte(req.BodyHTML)); err != nil {
		return nil, fmt.Errorf("write body part: %w", err)
	}

	if att := req.Attachment; att != nil {
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", att.MIMEType)
		attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
		attHeader.Set("Content-Transfer-Encoding", "base64")
		part, err := mw.CreatePart(attHeader)
		if err != nil {
			return nil, fmt.Errorf("create attachment part: %w", err)
		}
		encoded := base64.StdEncoding.EncodeToString(att.Data)
		if _, err := part.Write([]byte(encoded)); err != nil {
			return nil, fmt.Errorf("write attachment part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close mime message: %w", err)
	}
	return buf.Bytes(), nil
}
