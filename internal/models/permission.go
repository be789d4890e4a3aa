package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PermissionLevel is totally ordered: PermissionView < PermissionEdit < PermissionOwner.
// Access checks compare levels directly with >=.
type PermissionLevel uint8

const (
	PermissionNone PermissionLevel = iota
	PermissionView
	PermissionEdit
	PermissionOwner
)

var permissionNames = map[PermissionLevel]string{
	PermissionView:  "view",
	PermissionEdit:  "edit",
	PermissionOwner: "owner",
}

func ParsePermissionLevel(value string) (PermissionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "view":
		return PermissionView, nil
	case "edit":
		return PermissionEdit, nil
	case "owner":
		return PermissionOwner, nil
	default:
		return PermissionNone, fmt.Errorf("invalid permission %q", value)
	}
}

func (p PermissionLevel) Valid() bool {
	return p >= PermissionView && p <= PermissionOwner
}

func (p PermissionLevel) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return "none"
}

func (p PermissionLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PermissionLevel) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePermissionLevel(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p PermissionLevel) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot store permission level %d", p)
	}
	return p.String(), nil
}

func (p *PermissionLevel) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported permission column type %T", src)
	}
	parsed, err := ParsePermissionLevel(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type ResourceType string

const (
	ResourceFile   ResourceType = "file"
	ResourceFolder ResourceType = "folder"
)

func ParseResourceType(value string) (ResourceType, bool) {
	switch ResourceType(strings.ToLower(strings.TrimSpace(value))) {
	case ResourceFile:
		return ResourceFile, true
	case ResourceFolder:
		return ResourceFolder, true
	default:
		return "", false
	}
}
