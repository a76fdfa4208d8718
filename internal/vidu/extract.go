package vidu

import "strings"

// ExtractVideoURL searches a status response body for a downloadable video
// URL. The service's response shape varies across deployments, so the lookup
// is a fixed priority ladder; the first match wins and only strings with an
// http prefix qualify at every tier:
//
//  1. top-level "video_url" or "url"
//  2. "video_url"/"url" inside a "result", "data", or "creations" object
//  3. "url"/"video_url" on the first element of a "creations" list
//  4. first element of a "videos" or "assets" list, either a bare URL string
//     or an object carrying "video_url"/"url"
func ExtractVideoURL(body map[string]any) (string, bool) {
	if u, ok := httpString(body["video_url"]); ok {
		return u, true
	}
	if u, ok := httpString(body["url"]); ok {
		return u, true
	}

	for _, top := range []string{"result", "data", "creations"} {
		obj, ok := body[top].(map[string]any)
		if !ok {
			continue
		}
		if u, ok := httpString(obj["video_url"]); ok {
			return u, true
		}
		if u, ok := httpString(obj["url"]); ok {
			return u, true
		}
	}

	if list, ok := body["creations"].([]any); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok {
			if u, ok := httpString(first["url"]); ok {
				return u, true
			}
			if u, ok := httpString(first["video_url"]); ok {
				return u, true
			}
		}
	}

	for _, top := range []string{"videos", "assets"} {
		list, ok := body[top].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		if u, ok := httpString(list[0]); ok {
			return u, true
		}
		if first, ok := list[0].(map[string]any); ok {
			if u, ok := httpString(first["video_url"]); ok {
				return u, true
			}
			if u, ok := httpString(first["url"]); ok {
				return u, true
			}
		}
	}

	return "", false
}

func httpString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "http") {
		return "", false
	}
	return s, true
}
