package view

import (
	"fmt"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
)

// View is everything the rendering layer needs for one paint.
type View struct {
	Kind         domain.Kind                `json:"kind"`
	Title        string                     `json:"title"`
	State        State                      `json:"state"`
	Filter       domain.FilterState         `json:"filter"`
	Columns      []Column[Row]              `json:"columns"`
	Rows         []Row                      `json:"rows"`
	Table        [][]Cell                   `json:"table"`
	RowCount     int                        `json:"rowCount"`
	QueueColumns []Column[domain.QueueItem] `json:"queueColumns"`
	QueueRows    []domain.QueueItem         `json:"queueRows"`
	QueueTable   [][]Cell                   `json:"queueTable"`
	Loading      Loading                    `json:"loading"`
	Comment      CommentDialog              `json:"comment"`
	Transitions  []StatusTransition         `json:"statusTransitions,omitempty"`
	Failures     []Failure                  `json:"failures,omitempty"`
	Routes       Routes                     `json:"routes"`
}

// Routes are the navigation affordances; routing itself happens elsewhere.
type Routes struct {
	Upload string `json:"upload"`
	Detail string `json:"detail,omitempty"`
}

func routesFor(desc *domain.KindDescriptor) Routes {
	routes := Routes{Upload: desc.UploadRoute()}
	if desc.DetailLink {
		routes.Detail = fmt.Sprintf("/%s/{workshopId}/accounts", desc.Kind)
	}
	return routes
}
