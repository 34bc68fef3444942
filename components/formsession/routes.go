package formsession

import (
	"fmt"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MountPath returns the full mount path for the component routes under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes mounts h under basePath on r and returns the mount path.
func RegisterRoutes(r chi.Router, basePath string, h *Handler) (string, error) {
	if r == nil {
		return "", fmt.Errorf("formsession: missing router")
	}
	if h == nil {
		return "", fmt.Errorf("formsession: missing handler")
	}
	pattern := mountPath(basePath, h.opts.RoutePath)
	if pattern == "/" {
		h.Register(r)
		return pattern, nil
	}
	r.Route(pattern, h.Register)
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	if routePath == "/" {
		return basePath
	}
	return basePath + strings.TrimRight(routePath, "/")
}
