package media

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

const defaultSignedURLTTL = 15 * time.Minute

type Presigner interface {
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

type Config struct {
	DefaultBucket string
	SignedURLTTL  time.Duration
}

// Resolver turns stored photo references into URLs a client can fetch.
// s3://bucket/key references are presigned, anything else is returned as is.
type Resolver struct {
	presigner Presigner
	cfg       Config
	log       *zap.Logger
}

func NewResolver(presigner Presigner, cfg Config, log *zap.Logger) *Resolver {
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = defaultSignedURLTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{presigner: presigner, cfg: cfg, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrValidation
	}
	bucket, key, ok := r.parseObjectRef(ref)
	if !ok {
		return ref, nil
	}
	if r.presigner == nil {
		return ref, nil
	}
	return r.presigner.PresignGet(ctx, bucket, key, r.cfg.SignedURLTTL)
}

// Candidate returns a copy of c with every photo resolved. Photos that fail to
// resolve keep their original reference.
func (r *Resolver) Candidate(ctx context.Context, c model.Candidate) model.Candidate {
	photos := make([]string, 0, len(c.Photos))
	for _, ref := range c.Photos {
		resolved, err := r.Resolve(ctx, ref)
		if err != nil {
			r.log.Warn("resolve candidate photo failed",
				zap.String("candidate_id", c.ID),
				zap.String("ref", ref),
				zap.Error(err),
			)
			resolved = ref
		}
		photos = append(photos, resolved)
	}
	c.Photos = photos
	return c
}

func (r *Resolver) parseObjectRef(ref string) (string, string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "s3" {
		return "", "", false
	}
	bucket := u.Host
	if bucket == "" {
		bucket = r.cfg.DefaultBucket
	}
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
