// Package imageurl превращает сохраненный путь к фото автомобиля в рабочий URL.
package imageurl

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"ticket-system/pkg/config"
)

type ResolverInterface interface {
	Resolve(ctx context.Context, stored string) string
}

type Resolver struct {
	base        *url.URL
	placeholder string
	timeout     time.Duration
	client      *http.Client
	logger      *zap.Logger
}

func NewResolver(cfg config.ImagesConfig, client *http.Client, logger *zap.Logger) ResolverInterface {
	if client == nil {
		client = &http.Client{}
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		logger.Warn("Некорректный IMAGES_BASE_URL, для всех фото будет заглушка",
			zap.String("base_url", cfg.BaseURL), zap.Error(err))
		base = nil
	}
	return &Resolver{
		base:        base,
		placeholder: cfg.Placeholder,
		timeout:     cfg.Timeout,
		client:      client,
		logger:      logger,
	}
}

// Resolve проверяет доступность изображения HEAD-запросом с ограничением по времени.
// При любой ошибке возвращается заглушка, вызывающий никогда не ждет дольше timeout.
func (r *Resolver) Resolve(ctx context.Context, stored string) string {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return r.placeholder
	}

	imageURL, ok := r.target(stored)
	if !ok {
		r.logger.Warn("Путь к изображению вне IMAGES_BASE_URL, используется заглушка", zap.String("stored", stored))
		return r.placeholder
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		r.logger.Warn("Некорректный URL изображения", zap.String("url", imageURL), zap.Error(err))
		return r.placeholder
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("Изображение недоступно, используется заглушка", zap.String("url", imageURL), zap.Error(err))
		return r.placeholder
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		r.logger.Warn("Изображение не найдено, используется заглушка",
			zap.String("url", imageURL), zap.Int("status", resp.StatusCode))
		return r.placeholder
	}
	return imageURL
}

// target строит URL изображения. Запрашивать можно только адреса под base:
// та же схема и хост, путь внутри базового каталога после path.Clean.
func (r *Resolver) target(stored string) (string, bool) {
	if r.base == nil {
		return "", false
	}
	basePath := strings.TrimRight(r.base.Path, "/")

	var u *url.URL
	if strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") {
		parsed, err := url.Parse(stored)
		if err != nil || parsed.User != nil {
			return "", false
		}
		if !strings.EqualFold(parsed.Scheme, r.base.Scheme) || !strings.EqualFold(parsed.Host, r.base.Host) {
			return "", false
		}
		u = parsed
	} else {
		rel, err := url.Parse(strings.TrimLeft(stored, "/"))
		if err != nil || rel.IsAbs() || rel.Host != "" {
			return "", false
		}
		u = &url.URL{
			Scheme:   r.base.Scheme,
			Host:     r.base.Host,
			Path:     basePath + "/" + rel.Path,
			RawQuery: rel.RawQuery,
		}
	}

	u.Path = path.Clean(u.Path)
	u.RawPath = ""
	if !strings.HasPrefix(u.Path, basePath+"/") {
		return "", false
	}
	return u.String(), true
}
