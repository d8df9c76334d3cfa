package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/heartrisk"
	"github.com/Skufu/heartcheck/internal/logger"
	"github.com/Skufu/heartcheck/internal/metrics"
	"github.com/Skufu/heartcheck/internal/store"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// AssessmentLog is the audit store as the handlers see it.
type AssessmentLog interface {
	HealthChecker
	Record(ctx context.Context, rec store.Record) error
	Recent(ctx context.Context, limit int) ([]store.Record, error)
}

type routerDeps struct {
	predictor  *heartrisk.Predictor
	modelKind  string
	log        *zap.Logger
	metrics    *metrics.Metrics
	audit      AssessmentLog
	staticRoot string
}

// PatientRequest mirrors the form widgets: same ranges, same choices. Numbers
// are pointers so that a legitimate 0 is told apart from a missing field.
type PatientRequest struct {
	Age            *int     `json:"age" binding:"required,min=18,max=100"`
	Sex            string   `json:"sex" binding:"required,oneof=M F"`
	ChestPainType  string   `json:"chestPainType" binding:"required,oneof=ATA NAP TA ASY"`
	RestingBP      *int     `json:"restingBP" binding:"required,min=80,max=200"`
	Cholesterol    *int     `json:"cholesterol" binding:"required,min=100,max=600"`
	FastingBS      *int     `json:"fastingBS" binding:"required,oneof=0 1"`
	RestingECG     string   `json:"restingECG" binding:"required,oneof=Normal ST LVH"`
	MaxHR          *int     `json:"maxHR" binding:"required,min=60,max=220"`
	ExerciseAngina string   `json:"exerciseAngina" binding:"required,oneof=Y N"`
	Oldpeak        *float64 `json:"oldpeak" binding:"required,min=0,max=6"`
	STSlope        string   `json:"stSlope" binding:"required,oneof=Up Flat Down"`
}

func (p PatientRequest) toInput() heartrisk.RawPatientInput {
	return heartrisk.RawPatientInput{
		Age:            *p.Age,
		Sex:            p.Sex,
		ChestPainType:  p.ChestPainType,
		RestingBP:      *p.RestingBP,
		Cholesterol:    *p.Cholesterol,
		FastingBS:      *p.FastingBS,
		RestingECG:     p.RestingECG,
		MaxHR:          *p.MaxHR,
		ExerciseAngina: p.ExerciseAngina,
		Oldpeak:        *p.Oldpeak,
		STSlope:        p.STSlope,
	}
}

type PredictResponse struct {
	ID        string `json:"id"`
	Label     int    `json:"label"`
	RiskLevel string `json:"riskLevel"`
	Message   string `json:"message"`
}

type FeaturesResponse struct {
	Columns []string  `json:"columns"`
	Values  []float64 `json:"values"`
	Dropped []string  `json:"dropped"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const requestIDKey = "requestID"

func setupRouter(deps routerDeps) *gin.Engine {
	if deps.log == nil {
		deps.log = logger.NewNoOpLogger()
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(deps.log),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.Static("/static", deps.staticRoot)
	router.StaticFile("/", filepath.Join(deps.staticRoot, "index.html"))
	router.StaticFile("/styles.css", filepath.Join(deps.staticRoot, "styles.css"))
	router.StaticFile("/app.js", filepath.Join(deps.staticRoot, "app.js"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		artifacts := gin.H{
			"columns": deps.predictor.Schema().Len(),
			"model":   deps.modelKind,
		}
		if deps.audit == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled", "artifacts": artifacts})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.audit.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "degraded",
				"db":        fmt.Sprintf("unhealthy: %v", err),
				"artifacts": artifacts,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok", "artifacts": artifacts})
	})

	if deps.metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.metrics.Handler()))
	}

	api := router.Group("/api")
	api.GET("/form", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fields": heartrisk.FormFields()})
	})
	api.GET("/schema", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"columns": deps.predictor.Schema().Columns()})
	})
	api.POST("/predict", handlePredict(deps))
	api.POST("/features", handleFeatures(deps))
	api.GET("/assessments", handleAssessments(deps))

	return router
}

func handlePredict(deps routerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bindPatient(c)
		if !ok {
			return
		}
		reqLog := deps.log.With(zap.String("request_id", c.GetString(requestIDKey)))

		start := time.Now()
		assessment, err := deps.predictor.Assess(raw)
		if err != nil {
			reason := "internal"
			if errors.Is(err, heartrisk.ErrShapeMismatch) {
				reason = "shape_mismatch"
			}
			if deps.metrics != nil {
				deps.metrics.ObserveFailure(reason)
			}
			reqLog.Error("prediction failed", zap.String("reason", reason), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction_failed", "details": err.Error()})
			return
		}
		took := time.Since(start)

		if len(assessment.Unmatched) > 0 {
			reqLog.Debug("categorical selection has no schema column", zap.Strings("columns", assessment.Unmatched))
		}
		if deps.metrics != nil {
			deps.metrics.ObservePrediction(assessment.Label.RiskLevel(), took)
			deps.metrics.ObserveDropped(assessment.Unmatched)
		}

		id := requestUUID(c)
		if deps.audit != nil {
			if err := deps.audit.Record(c.Request.Context(), store.NewRecord(id, time.Now(), assessment)); err != nil {
				reqLog.Warn("audit record failed", zap.Error(err))
			}
		}

		reqLog.Info("prediction",
			zap.Int("label", int(assessment.Label)),
			zap.String("risk_level", assessment.Label.RiskLevel()),
			zap.Duration("took", took),
		)
		c.JSON(http.StatusOK, PredictResponse{
			ID:        id.String(),
			Label:     int(assessment.Label),
			RiskLevel: assessment.Label.RiskLevel(),
			Message:   assessment.Label.Message(),
		})
	}
}

func handleFeatures(deps routerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bindPatient(c)
		if !ok {
			return
		}
		builder := deps.predictor.Builder()
		dropped := builder.Unmatched(raw)
		if dropped == nil {
			dropped = []string{}
		}
		c.JSON(http.StatusOK, FeaturesResponse{
			Columns: builder.Schema().Columns(),
			Values:  builder.Build(raw),
			Dropped: dropped,
		})
	}
}

func handleAssessments(deps routerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.audit == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "audit log disabled"})
			return
		}
		limit := 0
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = n
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		records, err := deps.audit.Recent(ctx, store.ClampLimit(limit))
		if err != nil {
			deps.log.Error("list assessments", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "audit query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"assessments": records})
	}
}

func bindPatient(c *gin.Context) (heartrisk.RawPatientInput, bool) {
	var payload PatientRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation_failed",
				"details": describeValidation(verrs),
			})
			return heartrisk.RawPatientInput{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return heartrisk.RawPatientInput{}, false
	}
	return payload.toInput(), true
}

func describeValidation(verrs validator.ValidationErrors) []FieldError {
	fields := map[string]heartrisk.FormField{}
	for _, f := range heartrisk.FormFields() {
		fields[f.Name] = f
	}
	reqType := reflect.TypeOf(PatientRequest{})

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if sf, ok := reqType.FieldByName(fe.StructField()); ok {
			name = strings.Split(sf.Tag.Get("json"), ",")[0]
		}
		label := name
		field, known := fields[name]
		if known {
			label = field.Label
		}

		var msg string
		switch fe.Tag() {
		case "required":
			msg = label + " is required"
		case "min", "max":
			if known {
				msg = fmt.Sprintf("%s must be between %g and %g", label, field.Min, field.Max)
			} else {
				msg = fmt.Sprintf("%s is out of range", label)
			}
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
		default:
			msg = fmt.Sprintf("%s is invalid", label)
		}
		out = append(out, FieldError{Field: name, Message: msg})
	}
	return out
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-Request-ID"))
		if err != nil {
			id = uuid.New()
		}
		c.Set(requestIDKey, id.String())
		c.Header("X-Request-ID", id.String())
		c.Next()
	}
}

func requestUUID(c *gin.Context) uuid.UUID {
	if id, err := uuid.Parse(c.GetString(requestIDKey)); err == nil {
		return id
	}
	return uuid.New()
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "web"
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		web := filepath.Join(dir, "web")
		if fileExists(filepath.Join(web, "index.html")) {
			return web
		}
	}

	return filepath.Join(startDir, "web")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
