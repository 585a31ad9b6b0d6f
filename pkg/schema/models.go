// Package schema provides database schema models for the published
// taxonomic reference table. Column names follow the canonical rank
// order; downstream format writers key on bin_uri and rely on these
// exact column names.
package schema

// BinLineage is one authoritative lineage per BIN, as served to
// downstream consumers.
type BinLineage struct {
	// ID is a deterministic UUID v5 derived from the BIN and its
	// classification breadcrumb; identical lineages always map to the
	// same ID across runs.
	ID string `gorm:"type:uuid;primaryKey"`

	// BinURI is the cluster identifier, e.g. "BOLD:AGS2783".
	BinURI string `gorm:"type:varchar(50);uniqueIndex;not null"`

	Kingdom string `gorm:"type:varchar(255)"`
	Phylum  string `gorm:"type:varchar(255)"`
	Class   string `gorm:"type:varchar(255)"`
	Order   string `gorm:"column:order;type:varchar(255)"`
	Family  string `gorm:"type:varchar(255)"`
	Genus   string `gorm:"type:varchar(255)"`
	Species string `gorm:"type:varchar(255)"`

	// Classification is the semicolon-joined breadcrumb of all rank
	// labels, kept for exporters that consume one string.
	Classification string `gorm:"type:text"`
}

// TableName implements the GORM naming interface.
func (BinLineage) TableName() string {
	return "bin_lineages"
}
