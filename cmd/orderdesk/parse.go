package main

import (
	"fmt"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/click2print/orderdesk/internal/model"
	"github.com/click2print/orderdesk/internal/orderstore"
)

// parseAssignments turns key=value arguments into a patch. Values stay
// strings; the store coerces numeric fields. Keys listed in clear are set to
// nil.
func parseAssignments(args, clear []string) (orderstore.Patch, error) {
	patch := make(orderstore.Patch, len(args)+len(clear))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: want key=value", arg)
		}
		patch[key] = value
	}
	for _, key := range clear {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		patch[key] = nil
	}
	return patch, nil
}

// parseFileArg parses name:size[:type]. The type defaults to the one
// registered for the file extension.
func parseFileArg(arg string) (model.UploadMeta, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return model.UploadMeta{}, fmt.Errorf("invalid file %q: want name:size[:type]", arg)
	}

	size, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || size < 0 {
		return model.UploadMeta{}, fmt.Errorf("invalid size in %q", arg)
	}

	meta := model.UploadMeta{Name: parts[0], Size: size}
	if len(parts) == 3 {
		meta.Type = parts[2]
	} else {
		meta.Type = mimeType(meta.Name)
	}
	return meta, nil
}

// designerUpload describes a file for the designer manifest. The ID is left
// empty for the store to assign.
func designerUpload(meta model.UploadMeta) model.DesignerUpload {
	return model.DesignerUpload{
		Name:    meta.Name,
		Size:    meta.Size,
		Type:    meta.Type,
		Ext:     strings.TrimPrefix(strings.ToLower(filepath.Ext(meta.Name)), "."),
		IsImage: strings.HasPrefix(meta.Type, "image/"),
	}
}

func mimeType(name string) string {
	t := mime.TypeByExtension(filepath.Ext(name))
	if t == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}
