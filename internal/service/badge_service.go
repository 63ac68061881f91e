package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/youruser/staffbadge/internal/badge"
	imagepkg "github.com/youruser/staffbadge/internal/image"
	"github.com/youruser/staffbadge/internal/mailer"
)

// Composer renders a badge request.
type Composer interface {
	Compose(req badge.Request) (*imagepkg.RenderedBadge, error)
}

// Store persists a rendered badge under name.
type Store interface {
	Save(name string, data []byte) (string, error)
}

// Result describes an issued badge.
type Result struct {
	Filename  string `json:"filename"`
	Path      string `json:"-"`
	EmailSent bool   `json:"email_sent"`
}

type BadgeService struct {
	composer     Composer
	store        Store
	sender       mailer.Sender
	emailTimeout time.Duration
	log          *zap.Logger
}

func NewBadgeService(composer Composer, store Store, sender mailer.Sender, emailTimeout time.Duration, log *zap.Logger) *BadgeService {
	return &BadgeService{
		composer:     composer,
		store:        store,
		sender:       sender,
		emailTimeout: emailTimeout,
		log:          log,
	}
}

// Issue renders, stores and emails a badge. Rendering and storage errors
// are returned; email errors are only logged.
func (s *BadgeService) Issue(ctx context.Context, req badge.Request) (*Result, error) {
	rendered, err := s.composer.Compose(req)
	if err != nil {
		return nil, err
	}

	path, err := s.store.Save(rendered.Filename, rendered.PNG)
	if err != nil {
		return nil, err
	}

	res := &Result{Filename: rendered.Filename, Path: path}
	res.EmailSent = s.deliver(ctx, req.RecipientEmail, rendered)

	s.log.Info("Badge issued",
		zap.String("filename", res.Filename),
		zap.Bool("email_sent", res.EmailSent))

	return res, nil
}

func (s *BadgeService) deliver(ctx context.Context, to string, rendered *imagepkg.RenderedBadge) bool {
	// the badge is already stored; a client disconnect must not abort delivery
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.emailTimeout)
	defer cancel()

	err := s.sender.SendBadge(ctx, to, rendered.Filename, rendered.PNG)
	switch {
	case err == nil:
		s.log.Info("Badge emailed", zap.String("to", to), zap.String("filename", rendered.Filename))
		return true
	case errors.Is(err, mailer.ErrDisabled):
		s.log.Info("Email skipped: credentials not set", zap.String("filename", rendered.Filename))
	default:
		s.log.Error("Email sending failed",
			zap.String("to", to),
			zap.String("filename", rendered.Filename),
			zap.Error(err))
	}
	return false
}
