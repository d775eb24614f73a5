package domain

import "time"

// Asset is a stored media object in the external provider. It is immutable
// once fetched: edits always produce a brand-new asset with a fresh public ID,
// so callers replace entries instead of patching them in place.
type Asset struct {
	PublicID  string    `json:"public_id"`
	AssetID   string    `json:"asset_id"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
	Format    string    `json:"format"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SecureURL string    `json:"secure_url"`
	Tags      []string  `json:"tags"`
}
