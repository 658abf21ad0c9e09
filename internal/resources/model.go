package resources

// Location types. Labs are locations with TypeLab.
const (
	TypeRoom = "room"
	TypeLab  = "lab"
)

// Location is a bookable/teachable space. Capacity is advisory.
type Location struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	LocType      string `json:"type"`
	Capacity     int    `json:"capacity"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	Available    bool   `json:"available"`
}

// Equipment is a lendable item pool. 0 <= AvailableQty <= TotalQty always.
type Equipment struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EquipType    string `json:"type"`
	TotalQty     int    `json:"total_qty"`
	AvailableQty int    `json:"available_qty"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}
