package api

import (
	"spckit/app"
	"spckit/internal/ishikawa"
)

// Analysis requests bind from a JSON body on POST and from the query
// string on GET, so charts and reports share them with the analyses.

type versionQuery struct {
	Version int64 `json:"version" form:"version"`
}

type paretoRequest struct {
	CategoryColumn string  `json:"category_column" form:"category_column" binding:"required"`
	ValueColumn    string  `json:"value_column" form:"value_column"`
	Threshold      float64 `json:"threshold" form:"threshold"`
	Version        int64   `json:"version" form:"version"`
}

func (r paretoRequest) toService() app.ParetoRequest {
	return app.ParetoRequest{
		CategoryColumn: r.CategoryColumn,
		ValueColumn:    r.ValueColumn,
		Threshold:      r.Threshold,
		Version:        r.Version,
	}
}

type columnRequest struct {
	Column  string `json:"column" form:"column" binding:"required"`
	Version int64  `json:"version" form:"version"`
}

type histogramRequest struct {
	Column  string `json:"column" form:"column" binding:"required"`
	Bins    int    `json:"bins" form:"bins" binding:"gte=0"`
	Version int64  `json:"version" form:"version"`
}

type stratifyRequest struct {
	CategoryColumn string `json:"category_column" form:"category_column" binding:"required"`
	NumericColumn  string `json:"numeric_column" form:"numeric_column" binding:"required"`
	Version        int64  `json:"version" form:"version"`
}

type correlationRequest struct {
	XColumn string `json:"x_column" form:"x_column" binding:"required"`
	YColumn string `json:"y_column" form:"y_column" binding:"required"`
	Version int64  `json:"version" form:"version"`
}

// dpmoRequest uses pointers so that an explicit zero defect count passes
// the required check.
type dpmoRequest struct {
	Defects       *int64 `json:"defects" form:"defects" binding:"required"`
	Units         *int64 `json:"units" form:"units" binding:"required"`
	Opportunities *int64 `json:"opportunities" form:"opportunities" binding:"required"`
}

type ishikawaCause struct {
	Category string   `json:"category" binding:"required"`
	Cause    string   `json:"cause" binding:"required"`
	Whys     []string `json:"whys"`
}

type ishikawaRequest struct {
	Effect     string          `json:"effect" binding:"required"`
	Causes     []ishikawaCause `json:"causes" binding:"dive"`
	Categories []string        `json:"categories"`
}

// diagram builds the diagram and the optional category filter.
func (r ishikawaRequest) diagram() (*ishikawa.Diagram, []ishikawa.Category, error) {
	d := ishikawa.NewDiagram(r.Effect)
	for _, c := range r.Causes {
		cat, err := ishikawa.ParseCategory(c.Category)
		if err != nil {
			return nil, nil, err
		}
		if err := d.AddCause(cat, c.Cause, c.Whys...); err != nil {
			return nil, nil, err
		}
	}
	filter := make([]ishikawa.Category, 0, len(r.Categories))
	for _, name := range r.Categories {
		cat, err := ishikawa.ParseCategory(name)
		if err != nil {
			return nil, nil, err
		}
		filter = append(filter, cat)
	}
	return d, filter, nil
}
