package resources

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campushub/internal/apperr"
)

// Handler exposes location, lab and equipment management endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"message": apperr.Message(err)})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apperr.Validation("invalid id"))
		return 0, false
	}
	return id, true
}

func queryDept(c *gin.Context) int64 {
	id, _ := strconv.ParseInt(c.Query("deptId"), 10, 64)
	return id
}

type locationInput struct {
	Name         string `json:"name" binding:"required"`
	LocType      string `json:"type"`
	Capacity     int    `json:"capacity"`
	DepartmentID *int64 `json:"department_id"`
	Available    *bool  `json:"available"`
}

func (in locationInput) toLocation(id int64, defaultType string) Location {
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	locType := in.LocType
	if locType == "" {
		locType = defaultType
	}
	return Location{
		ID:           id,
		Name:         in.Name,
		LocType:      locType,
		Capacity:     in.Capacity,
		DepartmentID: in.DepartmentID,
		Available:    available,
	}
}

// AddLocation creates a generic location.
func (h *Handler) AddLocation(c *gin.Context) {
	h.addLocation(c, TypeRoom)
}

// AddLab creates a lab (manage screen).
func (h *Handler) AddLab(c *gin.Context) {
	h.addLocation(c, TypeLab)
}

func (h *Handler) addLocation(c *gin.Context, defaultType string) {
	var in locationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("name required"))
		return
	}
	l, err := h.svc.AddLocation(c.Request.Context(), in.toLocation(0, defaultType))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// ListLocations returns all locations.
func (h *Handler) ListLocations(c *gin.Context) {
	h.listLocations(c, "")
}

// ListLabs returns labs, optionally scoped by ?deptId=.
func (h *Handler) ListLabs(c *gin.Context) {
	h.listLocations(c, TypeLab)
}

func (h *Handler) listLocations(c *gin.Context, locType string) {
	res, err := h.svc.ListLocations(c.Request.Context(), locType, queryDept(c))
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Location{}
	}
	c.JSON(http.StatusOK, res)
}

// UpdateLocation updates a location (also used by manage/labs).
func (h *Handler) UpdateLocation(c *gin.Context) {
	h.updateLocation(c, TypeRoom)
}

// UpdateLab updates a lab.
func (h *Handler) UpdateLab(c *gin.Context) {
	h.updateLocation(c, TypeLab)
}

func (h *Handler) updateLocation(c *gin.Context, defaultType string) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in locationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("name required"))
		return
	}
	if err := h.svc.UpdateLocation(c.Request.Context(), in.toLocation(id, defaultType)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "location updated"})
}

// DeleteLocation removes a location or lab.
func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveLocation(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "location deleted"})
}

type equipmentInput struct {
	Name         string `json:"name" binding:"required"`
	EquipType    string `json:"type"`
	TotalQty     int    `json:"total_qty" binding:"required"`
	DepartmentID *int64 `json:"department_id"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
}

// AddEquipment creates an equipment pool.
func (h *Handler) AddEquipment(c *gin.Context) {
	var in equipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("name and total_qty required"))
		return
	}
	e, err := h.svc.AddEquipment(c.Request.Context(), Equipment{
		Name:         in.Name,
		EquipType:    in.EquipType,
		TotalQty:     in.TotalQty,
		DepartmentID: in.DepartmentID,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// ListEquipment returns equipment, optionally scoped by ?deptId=.
func (h *Handler) ListEquipment(c *gin.Context) {
	res, err := h.svc.ListEquipment(c.Request.Context(), queryDept(c))
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []Equipment{}
	}
	c.JSON(http.StatusOK, res)
}

// UpdateEquipment updates an equipment pool.
func (h *Handler) UpdateEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in equipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("name and total_qty required"))
		return
	}
	if err := h.svc.UpdateEquipment(c.Request.Context(), Equipment{
		ID:           id,
		Name:         in.Name,
		EquipType:    in.EquipType,
		TotalQty:     in.TotalQty,
		DepartmentID: in.DepartmentID,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
	}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "equipment updated"})
}

// DeleteEquipment removes an equipment pool.
func (h *Handler) DeleteEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveEquipment(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "equipment deleted"})
}
