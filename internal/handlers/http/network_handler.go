package http

import (
	"net/http"

	"lanmesh/internal/core/domain"
	"lanmesh/internal/core/ports"
	apperrors "lanmesh/pkg/errors"

	"github.com/gin-gonic/gin"
)

type NetworkHandler struct {
	service ports.NetworkService
}

func NewNetworkHandler(service ports.NetworkService) *NetworkHandler {
	return &NetworkHandler{
		service: service,
	}
}

func (h *NetworkHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/scan", h.Scan)
		api.GET("/devices", h.ListDevices)
		api.GET("/users", h.ListUsers)
		api.GET("/devices/:id/metrics", h.DeviceMetrics)
		api.GET("/devices/:id/bandwidth", h.DeviceBandwidth)
		api.POST("/devices/:id/speedtest", h.DeviceSpeedtest)
		api.POST("/connect", h.Connect)
		api.DELETE("/connections/:id", h.RemoveConnection)
		api.POST("/connections/:id/test", h.TestConnection)
	}
}

// respondError maps an application error onto its HTTP status; anything
// unstructured becomes a 500.
func respondError(c *gin.Context, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *NetworkHandler) Scan(c *gin.Context) {
	devices, err := h.service.Scan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, devices)
}

func (h *NetworkHandler) ListDevices(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Devices())
}

func (h *NetworkHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.UsersWithMetrics(c.Request.Context()))
}

func (h *NetworkHandler) DeviceMetrics(c *gin.Context) {
	deviceID := domain.DeviceID(c.Param("id"))

	metrics, err := h.service.DeviceMetrics(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *NetworkHandler) DeviceBandwidth(c *gin.Context) {
	deviceID := domain.DeviceID(c.Param("id"))

	metrics, err := h.service.DeviceBandwidth(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *NetworkHandler) DeviceSpeedtest(c *gin.Context) {
	deviceID := domain.DeviceID(c.Param("id"))

	metrics, err := h.service.DeviceSpeedtest(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *NetworkHandler) Connect(c *gin.Context) {
	var req struct {
		UserID         string                `json:"userId" binding:"required"`
		SourceID       string                `json:"sourceId" binding:"required"`
		ConnectionType domain.ConnectionType `json:"connectionType" binding:"required"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.service.Connect(req.SourceID, req.UserID, req.ConnectionType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn)
}

func (h *NetworkHandler) RemoveConnection(c *gin.Context) {
	id := domain.ConnectionID(c.Param("id"))

	if err := h.service.RemoveConnection(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NetworkHandler) TestConnection(c *gin.Context) {
	id := domain.ConnectionID(c.Param("id"))

	result, err := h.service.TestConnection(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
