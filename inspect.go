// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import "strconv"

// ModTimeLayout is the layout used to render modification times in [Archive.Info]
const ModTimeLayout = "02 Jan 2006 15:04:05"

// Field labels of [Archive.Info], in output order
const (
	LabelFilename  = "Filename"
	LabelType      = "Type"
	LabelMode      = "Mode"
	LabelUID       = "UID"
	LabelGID       = "GID"
	LabelSize      = "Size"
	LabelModTime   = "Modification time"
	LabelChecksum  = "Checksum"
	LabelUserName  = "User name"
	LabelGroupName = "Group name"
)

// Field is one labelled value of an entry report.
type Field struct {
	Label string
	Value string
}

// Info returns the metadata report of the entry stored under name, or a [NotFoundError].
func (a *Archive) Info(name string) ([]Field, error) {
	e, err := a.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	return describe(&e, a.cfg), nil
}

// describe renders the fixed order report of e
func describe(e *Entry, cfg *Config) []Field {
	return []Field{
		{Label: LabelFilename, Value: e.Name},
		{Label: LabelType, Value: e.Type.String()},
		{Label: LabelMode, Value: e.Mode},
		{Label: LabelUID, Value: strconv.FormatInt(e.UID, 10)},
		{Label: LabelGID, Value: strconv.FormatInt(e.GID, 10)},
		{Label: LabelSize, Value: strconv.FormatInt(e.Size, 10)},
		{Label: LabelModTime, Value: e.ModTime.In(cfg.Location()).Format(ModTimeLayout)},
		{Label: LabelChecksum, Value: strconv.FormatInt(e.Checksum, 10)},
		{Label: LabelUserName, Value: e.Uname},
		{Label: LabelGroupName, Value: e.Gname},
	}
}
