package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gobeaver/specscribe"
	"github.com/gobeaver/specscribe/intake"
	"github.com/gobeaver/specscribe/internal/generate"
)

// formField is the multipart field every upload endpoint reads.
const formField = "file"

var noFileNotice = intake.Notice{
	Title:       "No file selected",
	Description: "Please choose a file to upload.",
	Variant:     intake.VariantDestructive,
}

// upload returns a handler that stages the first file in the form under
// kind and responds with the extracted text in textField.
func (s *Server) upload(kind specscribe.DocumentKind, textField string) gin.HandlerFunc {
	return func(c *gin.Context) {
		policy, err := s.staging.Policy(kind)
		if err != nil {
			s.logger.Error("no intake policy", slog.String("kind", string(kind)), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": noFileNotice.Title, "notice": noFileNotice})
			return
		}

		header, ok := intake.First(form.File[formField])
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": noFileNotice.Title, "notice": noFileNotice})
			return
		}

		file := intake.FromFileHeader(header)

		content, err := header.Open()
		if err != nil {
			s.logger.Error("failed to open upload", slog.String("kind", string(kind)), slog.Any("error", err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to process file: " + err.Error()})
			return
		}
		defer content.Close()

		doc, err := s.staging.Stage(c.Request.Context(), kind, file, content)
		if err != nil {
			if reason := intake.ReasonOf(err); reason != "" {
				s.reject(c, kind, policy, file, reason)
				return
			}
			s.logger.Error("failed to stage upload",
				slog.String("kind", string(kind)),
				slog.String("name", file.Name),
				slog.Any("error", err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file: " + err.Error()})
			return
		}

		s.logger.Info("document staged",
			slog.String("kind", string(kind)),
			slog.String("id", doc.ID),
			slog.String("name", doc.Name),
			slog.Int64("size", doc.Size),
		)

		c.JSON(http.StatusOK, gin.H{
			textField:  generate.Extract(*doc),
			"document": doc,
		})
	}
}

// reject writes the notice for a rejected upload.
func (s *Server) reject(c *gin.Context, kind specscribe.DocumentKind, policy intake.Policy, file intake.CandidateFile, reason intake.Reason) {
	s.logger.Info("upload rejected",
		slog.String("kind", string(kind)),
		slog.String("name", file.Name),
		slog.String("declared_type", file.DeclaredType),
		slog.Int64("size", file.Size),
		slog.String("reason", string(reason)),
	)

	status := http.StatusBadRequest
	switch reason {
	case intake.ReasonTooLarge:
		status = http.StatusRequestEntityTooLarge
	case intake.ReasonUnsupportedType:
		status = http.StatusUnsupportedMediaType
	}

	c.JSON(status, gin.H{
		"error":  string(reason),
		"notice": intake.NoticeFor(reason, policy),
	})
}

func (s *Server) generateJobSpec(c *gin.Context) {
	var req generate.JobSpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	spec, err := s.generator.JobSpec(c.Request.Context(), req)
	if err != nil {
		s.generationFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_specification": spec})
}

func (s *Server) generateInterviewQuestions(c *gin.Context) {
	var req generate.InterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	questions, err := s.generator.InterviewQuestions(c.Request.Context(), req)
	if err != nil {
		s.generationFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) generationFailed(c *gin.Context, err error) {
	if ge, ok := generate.AsError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": ge.Description,
			"notice": intake.Notice{
				Title:       ge.Title,
				Description: ge.Description,
				Variant:     intake.VariantDestructive,
			},
		})
		return
	}

	s.logger.Error("generation failed", slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating content: " + err.Error()})
}

func (s *Server) listDocuments(c *gin.Context) {
	kind, err := specscribe.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	docs, err := s.staging.List(c.Request.Context(), kind)
	if err != nil {
		s.documentError(c, err)
		return
	}
	if docs == nil {
		docs = []specscribe.StagedDocument{}
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (s *Server) getDocument(c *gin.Context) {
	kind, err := specscribe.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	doc, err := s.staging.Lookup(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		s.documentError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (s *Server) discardDocument(c *gin.Context) {
	kind, err := specscribe.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if err := s.staging.Discard(c.Request.Context(), kind, c.Param("id")); err != nil {
		s.documentError(c, err)
		return
	}

	s.logger.Info("document discarded", slog.String("kind", string(kind)), slog.String("id", c.Param("id")))
	c.Status(http.StatusNoContent)
}

func (s *Server) documentError(c *gin.Context, err error) {
	switch {
	case specscribe.IsNotExist(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	case errors.Is(err, specscribe.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
	default:
		s.logger.Error("document lookup failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
