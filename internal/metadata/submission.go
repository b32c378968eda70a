// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-engine/internal/naming"
	"github.com/pdiddy/paper-engine/pkg/types"
)

var separator = strings.Repeat("=", 60)

var submissionTmpl = template.Must(template.New("submission").Parse(`SSRN SUBMISSION INFORMATION
{{.Rule}}

PAPER DETAILS
Filename: {{.Filename}}
Title: {{.Title}}
Subtitle: {{.Subtitle}}
Track: {{.Track}}{{if .ParentTopic}} (from "{{.ParentTopic}}"){{end}}

AUTHOR INFORMATION
Name: {{.Author}}
ORCID: {{.ORCID}}
Email: {{.Email}}
Affiliation: {{.Affiliation}}

METADATA
Date: {{.Date}}
Keywords: {{.Keywords}}
JEL Codes: {{.JELCodes}}
Word Count: {{.WordCount}}

ABSTRACT
{{.Abstract}}

SUGGESTED EJOURNALS
{{.EJournals}}

SUBMISSION CHECKLIST
[ ] Review paper for accuracy
[ ] Verify all metadata is correct
[ ] Check filename follows {{.Prefix}}[ShortTitle]_[YYYYMMDD].pdf
[ ] Upload to SSRN
[ ] Submit to suggested eJournals
[ ] Update tracking spreadsheet

{{.Rule}}
`))

// SubmissionPath returns the checklist path for rec under dir.
func SubmissionPath(dir string, rec types.MetadataRecord) string {
	return filepath.Join(dir, fmt.Sprintf("submission_info_%s_%s.txt", rec.Track, rec.DateShort))
}

func writeSubmissionInfo(dir string, rec types.MetadataRecord) (string, error) {
	var buf bytes.Buffer
	err := submissionTmpl.Execute(&buf, struct {
		types.MetadataRecord
		Rule   string
		Prefix string
	}{rec, separator, naming.Prefix})
	if err != nil {
		return "", fmt.Errorf("rendering submission info: %w", err)
	}
	path := SubmissionPath(dir, rec)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing submission info: %w", err)
	}
	return path, nil
}
