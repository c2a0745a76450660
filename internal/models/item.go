package models

import (
	"encoding/json"
	"time"
)

// Condition is the wear grade of an item.
type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
	ConditionPoor    Condition = "Poor"
)

// Conditions lists every accepted condition, best first.
var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}

func (c Condition) Valid() bool {
	for _, v := range Conditions {
		if c == v {
			return true
		}
	}
	return false
}

// OwnerRef is the owner summary embedded in item responses. It never carries
// a password hash.
type OwnerRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Item is a listable thing offered for swapping.
type Item struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Condition   Condition `json:"condition"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	OwnerID     string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`

	// Owner is filled in by owner resolution; nil means unresolved.
	Owner *OwnerRef `json:"-"`
}

// MarshalJSON renders owner as the resolved summary when present and as the
// bare owner id otherwise.
func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	var owner any = i.OwnerID
	if i.Owner != nil {
		owner = i.Owner
	}
	return json.Marshal(struct {
		plain
		Owner any `json:"owner"`
	}{plain: plain(i), Owner: owner})
}

// UnmarshalJSON accepts owner either as a resolved summary or a bare id.
func (i *Item) UnmarshalJSON(b []byte) error {
	type plain Item
	var raw struct {
		plain
		Owner json.RawMessage `json:"owner"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*i = Item(raw.plain)
	i.Owner = nil

	if len(raw.Owner) == 0 || string(raw.Owner) == "null" {
		return nil
	}
	if raw.Owner[0] == '"' {
		return json.Unmarshal(raw.Owner, &i.OwnerID)
	}
	var ref OwnerRef
	if err := json.Unmarshal(raw.Owner, &ref); err != nil {
		return err
	}
	i.Owner = &ref
	i.OwnerID = ref.ID
	return nil
}

// ItemFields are the client-mutable fields of an item.
type ItemFields struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Condition   Condition `json:"condition"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
}

// Apply overwrites the mutable fields of item. The owner is left alone.
func (f ItemFields) Apply(item *Item) {
	item.Title = f.Title
	item.Description = f.Description
	item.Condition = f.Condition
	item.Category = f.Category
	item.ImageURL = f.ImageURL
}

// ItemFilter narrows ListAll. Zero value matches everything.
type ItemFilter struct {
	Query    string
	Category string
}

// ItemResponse wraps an item with a status message.
type ItemResponse struct {
	Message string `json:"message"`
	Item    *Item  `json:"item"`
}

// MessageResponse carries a bare status message.
type MessageResponse struct {
	Message string `json:"message"`
}
