package folder

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder groups saved reports; folders nest through ParentID.
type Folder struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	TenantID    primitive.ObjectID  `json:"tenant_id" bson:"tenant_id"`
	Name        string              `json:"name" bson:"name"`
	ParentID    *primitive.ObjectID `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	IsFavourite bool                `json:"is_favourite" bson:"is_favourite"`
	Owner       string              `json:"owner" bson:"owner"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// FolderWithCount decorates a folder with its live report count for
// listings.
type FolderWithCount struct {
	Folder      `bson:",inline"`
	ReportCount int64 `json:"report_count"`
}
