package model

import (
	"slices"
	"time"
)

type ProfileStatus string

var (
	Active   ProfileStatus = "active"
	Inactive ProfileStatus = "inactive"
)

type Profile struct {
	ID             string        `gorm:"column:id;primaryKey" json:"id"`
	FullName       string        `gorm:"column:full_name" json:"full_name"`
	Username       string        `gorm:"column:username;uniqueIndex" json:"username"`
	Email          string        `gorm:"column:email;uniqueIndex" json:"email"`
	Password       string        `gorm:"column:password" json:"-"`
	AvatarURL      string        `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Status         ProfileStatus `gorm:"column:status" json:"status"`
	FamilyID       *string       `gorm:"column:family_id;index" json:"family_id"`
	AllowedEditors []string      `gorm:"column:allowed_editors;type:text;serializer:json" json:"allowed_editors"`
	CreatedAt      time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"column:updated_at" json:"updated_at"`
	LastSeenAt     *time.Time    `gorm:"column:last_seen_at" json:"last_seen_at,omitempty"`
}

func (m *Profile) TableName() string {
	return "profiles"
}

func (m *Profile) AllowsEditor(actorID string) bool {
	return slices.Contains(m.AllowedEditors, actorID)
}

func (m *Profile) InFamily(familyID string) bool {
	return m.FamilyID != nil && *m.FamilyID == familyID
}

// FamilyGroup is the set of profiles sharing a family id. It has no table of its own.
type FamilyGroup struct {
	ID        string    `json:"id"`
	MemberIDs []string  `json:"member_ids"`
	Members   []Profile `json:"members"`
}

func NewFamilyGroup(id string, members []Profile) FamilyGroup {
	g := FamilyGroup{
		ID:        id,
		MemberIDs: make([]string, 0, len(members)),
		Members:   members,
	}
	for _, m := range members {
		g.MemberIDs = append(g.MemberIDs, m.ID)
	}
	return g
}

func (g FamilyGroup) Has(userID string) bool {
	return slices.Contains(g.MemberIDs, userID)
}
