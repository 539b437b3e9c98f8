package models

import (
	"encoding/json"

	"stayops-backend/internal/apperr"
)

// SubTask is a single line item inside a checklist area.
type SubTask struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Area is one section of a task checklist (kitchen, bathroom, ...).
type Area struct {
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	PhotoRequired bool      `json:"photo_required"`
	Completed     bool      `json:"completed"`
	Photos        []string  `json:"photos"`
	Notes         string    `json:"notes,omitempty"`
	SubTasks      []SubTask `json:"subTasks"`
}

// StaySupply is a stay-checklist line, optionally linked to a catalog
// supply item so reported usage flows into the inventory ledger.
type StaySupply struct {
	ID           int    `json:"id"`
	Text         string `json:"text"`
	Checked      bool   `json:"checked"`
	SupplyItemID *int   `json:"supplyItemId,omitempty"`
	ExpectedQty  int    `json:"expectedQty,omitempty"`
	QtyUsed      int    `json:"qtyUsed,omitempty"`
}

// Checklist is the canonical in-memory form of a task's checklist_data
// blob. Two shapes exist in stored data: the current object form
// {areas, staySupplies} and a legacy bare array of areas. UnmarshalJSON
// accepts both; serialization always writes the object form.
type Checklist struct {
	Areas        []Area       `json:"areas"`
	StaySupplies []StaySupply `json:"staySupplies"`
}

func (c *Checklist) UnmarshalJSON(b []byte) error {
	// Legacy rows store a bare array of areas.
	if len(b) > 0 && b[0] == '[' {
		var areas []Area
		if err := json.Unmarshal(b, &areas); err != nil {
			return err
		}
		c.Areas = areas
		c.StaySupplies = nil
		return nil
	}

	type alias Checklist // avoid recursing into this method
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = Checklist(a)
	return nil
}

// ValidateComplete checks that every area is finished: marked complete,
// photographed where required, and with all sub-tasks done. It fails fast
// on the first violation in area order so the operator gets one actionable
// message at a time.
func (c *Checklist) ValidateComplete() error {
	for i, area := range c.Areas {
		name := area.Name
		if name == "" {
			name = "unnamed"
		}
		if !area.Completed {
			return apperr.Validation("area %d (%s) is not marked as completed", i+1, name)
		}
		if area.PhotoRequired && len(area.Photos) == 0 {
			return apperr.Validation("area %d (%s) requires at least one photo", i+1, name)
		}
		for _, st := range area.SubTasks {
			if !st.Completed {
				return apperr.Validation("sub-task %q in area %d (%s) is not completed", st.Text, i+1, name)
			}
		}
	}
	return nil
}

// ToggleStaySupply flips the checked flag of the stay supply with the
// given id and returns the mutated line.
func (c *Checklist) ToggleStaySupply(supplyID int) (*StaySupply, error) {
	s := c.findStaySupply(supplyID)
	if s == nil {
		return nil, apperr.NotFound("stay supply %d not found in checklist", supplyID)
	}
	s.Checked = !s.Checked
	return s, nil
}

// SetStaySupplyUsage updates a stay supply's checked flag and reported
// used quantity in one step.
func (c *Checklist) SetStaySupplyUsage(supplyID int, checked bool, qtyUsed int) (*StaySupply, error) {
	if qtyUsed < 0 {
		return nil, apperr.Validation("used quantity cannot be negative")
	}
	s := c.findStaySupply(supplyID)
	if s == nil {
		return nil, apperr.NotFound("stay supply %d not found in checklist", supplyID)
	}
	s.Checked = checked
	s.QtyUsed = qtyUsed
	return s, nil
}

// ToggleSubTask flips the completed flag of a sub-task addressed by area
// index and sub-task id.
func (c *Checklist) ToggleSubTask(areaIndex, subTaskID int) error {
	area, err := c.area(areaIndex)
	if err != nil {
		return err
	}
	for i := range area.SubTasks {
		if area.SubTasks[i].ID == subTaskID {
			area.SubTasks[i].Completed = !area.SubTasks[i].Completed
			return nil
		}
	}
	return apperr.NotFound("sub-task %d not found in area %d", subTaskID, areaIndex+1)
}

// SetArea is the legacy whole-area update: completed flag and notes by
// area index.
func (c *Checklist) SetArea(areaIndex int, completed bool, notes string) error {
	area, err := c.area(areaIndex)
	if err != nil {
		return err
	}
	area.Completed = completed
	area.Notes = notes
	return nil
}

// AddAreaPhoto appends a photo URL to an area. The upload itself happens
// elsewhere; the checklist only stores the resulting URL.
func (c *Checklist) AddAreaPhoto(areaIndex int, url string) error {
	if url == "" {
		return apperr.Validation("photo URL is required")
	}
	area, err := c.area(areaIndex)
	if err != nil {
		return err
	}
	area.Photos = append(area.Photos, url)
	return nil
}

func (c *Checklist) area(index int) (*Area, error) {
	if index < 0 || index >= len(c.Areas) {
		return nil, apperr.NotFound("area index %d out of range", index)
	}
	return &c.Areas[index], nil
}

func (c *Checklist) findStaySupply(supplyID int) *StaySupply {
	for i := range c.StaySupplies {
		if c.StaySupplies[i].ID == supplyID {
			return &c.StaySupplies[i]
		}
	}
	return nil
}
