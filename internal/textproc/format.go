package textproc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatResume renders a structured resume value into the fixed labeled-section
// plain text that gets embedded and indexed. The value is whatever the response
// normalizer produced; anything that is not a JSON object degrades to its
// compact JSON encoding so the pipeline still has text to index.
func FormatResume(value any) string {
	resume, ok := value.(map[string]any)
	if !ok {
		return compactJSON(value)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Location: %s", stringField(resume, "location")))
	lines = append(lines, fmt.Sprintf("Total Experience: %s", stringField(resume, "total_experience")))
	lines = append(lines, "Skills: "+strings.Join(stringList(resume, "skills"), ", "))

	lines = append(lines, "\nWork Experience:")
	for _, entry := range objectList(resume, "work_experience") {
		lines = append(lines, fmt.Sprintf("- %s at %s (%s to %s): %s",
			stringField(entry, "title"),
			stringField(entry, "company"),
			stringField(entry, "start_date"),
			stringField(entry, "end_date"),
			stringField(entry, "description"),
		))
	}

	lines = append(lines, "\nEducation:")
	for _, entry := range objectList(resume, "education") {
		lines = append(lines, fmt.Sprintf("- %s in %s from %s (%s–%s)",
			stringField(entry, "degree"),
			stringField(entry, "field_of_study"),
			stringField(entry, "institute"),
			stringField(entry, "start_date"),
			stringField(entry, "end_date"),
		))
	}

	lines = append(lines, "\nCertifications:")
	for _, cert := range stringList(resume, "certifications") {
		lines = append(lines, "- "+cert)
	}

	lines = append(lines, "\nProjects:")
	for _, entry := range objectList(resume, "projects") {
		lines = append(lines, fmt.Sprintf("- %s: %s",
			stringField(entry, "title"),
			stringField(entry, "description"),
		))
	}

	return strings.Join(lines, "\n")
}

func compactJSON(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}

func stringField(object map[string]any, key string) string {
	v, ok := object[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func stringList(object map[string]any, key string) []string {
	raw, ok := object[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprintf("%v", item))
	}
	return out
}

func objectList(object map[string]any, key string) []map[string]any {
	raw, ok := object[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]any); ok {
			out = append(out, entry)
		}
	}
	return out
}
