package transfer

import "strings"

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeDOC  = "application/msword"
	ContentTypeText = "text/plain"
)

// InferContentType maps a file name to the content type recorded on a
// resume. Suffixes are matched case-insensitively against the name as
// given, so trailing whitespace defeats the match.
func InferContentType(fileName string) string {
	name := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return ContentTypePDF
	case strings.HasSuffix(name, ".docx"):
		return ContentTypeDOCX
	case strings.HasSuffix(name, ".doc"):
		return ContentTypeDOC
	default:
		return ContentTypeText
	}
}
