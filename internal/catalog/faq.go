package catalog

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// FAQ is one question/answer pair from the store's FAQ document.
type FAQ struct {
	ID       int64
	Question string
	Answer   string
}

// FAQProvider supplies the FAQ list. Unlike the product catalog there is no
// fallback content: a failed retrieval yields an empty list.
type FAQProvider interface {
	FetchFAQs(ctx context.Context) ([]FAQ, error)
}

// LoadFAQs fetches FAQs from p, degrading to an empty list on failure.
func LoadFAQs(ctx context.Context, p FAQProvider, lg *zap.Logger) []FAQ {
	if p == nil {
		return nil
	}
	faqs, err := p.FetchFAQs(ctx)
	if err != nil {
		lg.Warn("faq retrieval failed, serving none", zap.Error(err))
		return nil
	}
	return faqs
}

// HTTPFAQProvider fetches the FAQ document over HTTP.
type HTTPFAQProvider struct {
	URL    string
	Client *http.Client
}

func (p *HTTPFAQProvider) FetchFAQs(ctx context.Context) ([]FAQ, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create faq request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch faq")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch faq: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read faq body")
	}

	return ParseFAQs(data)
}

// FileFAQProvider reads the FAQ document from local disk.
type FileFAQProvider struct {
	Path string
}

func (p *FileFAQProvider) FetchFAQs(_ context.Context) ([]FAQ, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, errors.Wrap(err, "read faq file")
	}
	return ParseFAQs(data)
}

// ParseFAQs decodes {"faqs": [{id, question, answer}, ...]}.
func ParseFAQs(data []byte) ([]FAQ, error) {
	d := jx.DecodeBytes(data)

	var faqs []FAQ
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "faqs" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			var f FAQ
			if err := d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "id":
					v, err := d.Int64()
					f.ID = v
					return err
				case "question":
					v, err := d.Str()
					f.Question = v
					return err
				case "answer":
					v, err := d.Str()
					f.Answer = v
					return err
				default:
					return d.Skip()
				}
			}); err != nil {
				return err
			}
			faqs = append(faqs, f)
			return nil
		})
	}); err != nil {
		return nil, errors.Wrap(err, "decode faq")
	}

	return faqs, nil
}
