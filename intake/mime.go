package intake

// Extension to MIME type mapping for the document formats the application
// handles
var extensionToMimeType = map[string]string{
	".pdf":      TypePDF,
	".doc":      "application/msword",
	".docx":     TypeDOCX,
	".odt":      "application/vnd.oasis.opendocument.text",
	".rtf":      "application/rtf",
	".txt":      TypeText,
	".md":       "text/markdown",
	".markdown": "text/markdown",
}

// MIMETypeForExtension returns the MIME type for a given file extension.
// Returns empty string if the extension is not recognized.
func MIMETypeForExtension(ext string) string {
	return extensionToMimeType[ext]
}

// ContentTypeOf picks the content type to store a file under: the declared
// type when present, else the type implied by the extension, else
// application/octet-stream.
func ContentTypeOf(file CandidateFile) string {
	if file.DeclaredType != "" {
		return file.DeclaredType
	}
	if t := MIMETypeForExtension(file.Extension()); t != "" {
		return t
	}
	return "application/octet-stream"
}
