package http

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
)

type CacheHandler interface {
	Stats(w http.ResponseWriter, r *http.Request)
	ClearAll(w http.ResponseWriter, r *http.Request)
	ClearCompany(w http.ResponseWriter, r *http.Request)
	ClearEmployee(w http.ResponseWriter, r *http.Request)
	ClearOne(w http.ResponseWriter, r *http.Request)
	Keys(w http.ResponseWriter, r *http.Request)
}

type CacheHandlerImpl struct {
	caches *cache.Registry
}

func NewCacheHandler(caches *cache.Registry) CacheHandler {
	return &CacheHandlerImpl{caches: caches}
}

func (h *CacheHandlerImpl) unknown(w http.ResponseWriter, name string) {
	response.BadRequest(w, "Unknown cache name: "+name, map[string]interface{}{
		"validNames": h.caches.Names(),
	})
}

func audit(r *http.Request, msg string, args ...any) {
	if claims, ok := jwt.ClaimsFromContext(r.Context()); ok {
		args = append(args, "by", claims.UserID)
	}
	slog.Info(msg, args...)
}

// Stats implements CacheHandler.
func (h *CacheHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.caches.Stats())
}

// ClearAll implements CacheHandler.
func (h *CacheHandlerImpl) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.caches.ClearAll()
	audit(r, "caches flushed from api")
	response.SuccessWithMessage(w, "All caches cleared", nil)
}

// ClearCompany implements CacheHandler.
func (h *CacheHandlerImpl) ClearCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "companyId")
	removed := h.caches.ClearCompany(id)
	audit(r, "company cache cleared from api", "company_id", id)
	response.SuccessWithMessage(w, "Company cache cleared", map[string]int{"removed": removed})
}

// ClearEmployee implements CacheHandler.
func (h *CacheHandlerImpl) ClearEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeId")
	removed := h.caches.ClearEmployee(id)
	audit(r, "employee cache cleared from api", "employee_id", id)
	response.SuccessWithMessage(w, "Employee cache cleared", map[string]int{"removed": removed})
}

// ClearOne implements CacheHandler.
func (h *CacheHandlerImpl) ClearOne(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "cacheName")
	if err := h.caches.Clear(name); err != nil {
		if errors.Is(err, cache.ErrUnknownCache) {
			h.unknown(w, name)
			return
		}
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Cache "+name+" cleared", nil)
}

// Keys implements CacheHandler.
func (h *CacheHandlerImpl) Keys(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "cacheName")
	c, err := h.caches.Get(name)
	if err != nil {
		h.unknown(w, name)
		return
	}
	keys := c.Keys()
	sort.Strings(keys)
	response.Success(w, map[string]interface{}{
		"name":  name,
		"count": len(keys),
		"keys":  keys,
	})
}
