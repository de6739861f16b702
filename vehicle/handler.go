package vehicle

import (
	"context"
	"net/http"

	"github.com/KOMKZ/yogan-vehicle-api/httpx"
	"github.com/KOMKZ/yogan-vehicle-api/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the cache-aware access to the catalogue. *cache.Coordinator[*Vehicle]
// implements it.
type Service interface {
	GetCollection(ctx context.Context) ([]*Vehicle, error)
	Add(ctx context.Context, v *Vehicle) (int64, error)
	Update(ctx context.Context, id int64, v *Vehicle) error
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	svc Service
	log logger.Logger
}

func NewHandler(svc Service, log logger.Logger) *Handler {
	if log == nil {
		log = logger.GetLogger("vehicle")
	}
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes mounts the catalogue under /api/vehicle.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/vehicle")
	g.GET("", httpx.Wrap(h.list))
	g.POST("", httpx.Wrap(h.create))
	g.PUT("/:id", httpx.Wrap(h.update))
	g.DELETE("/:id", httpx.Wrap(h.delete))
}

func (h *Handler) list(c *gin.Context) (int, interface{}, error) {
	items, err := h.svc.GetCollection(c.Request.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, items, nil
}

type createdResponse struct {
	ID int64 `json:"id"`
}

func (h *Handler) create(c *gin.Context) (int, interface{}, error) {
	v, err := bindVehicle(c)
	if err != nil {
		return 0, nil, err
	}
	id, err := h.svc.Add(c.Request.Context(), v)
	if err != nil {
		return 0, nil, err
	}
	h.log.InfoCtx(c.Request.Context(), "vehicle created", zap.Int64("id", id), zap.String("plate", v.Plate))
	return http.StatusCreated, createdResponse{ID: id}, nil
}

func (h *Handler) update(c *gin.Context) (int, interface{}, error) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		return 0, nil, err
	}
	v, err := bindVehicle(c)
	if err != nil {
		return 0, nil, err
	}
	if err := h.svc.Update(c.Request.Context(), id, v); err != nil {
		return 0, nil, err
	}
	h.log.InfoCtx(c.Request.Context(), "vehicle updated", zap.Int64("id", id))
	return http.StatusNoContent, nil, nil
}

func (h *Handler) delete(c *gin.Context) (int, interface{}, error) {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		return 0, nil, err
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		return 0, nil, err
	}
	h.log.InfoCtx(c.Request.Context(), "vehicle deleted", zap.Int64("id", id))
	return http.StatusNoContent, nil, nil
}

// bindVehicle returns nil for an empty body so validation reports a nil item.
func bindVehicle(c *gin.Context) (*Vehicle, error) {
	var v Vehicle
	ok, err := httpx.BindJSON(c, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}
