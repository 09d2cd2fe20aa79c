package api

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
)

// YogaHandler serves the public demo endpoints. The detect/analyze
// responses here are randomly generated placeholders for clients that
// haven't integrated the webcam flow yet; real analysis lives under
// /api/pose. Randomness goes through the top-level math/rand functions,
// which are safe for concurrent requests.
type YogaHandler struct{}

// NewYogaHandler creates a new YogaHandler.
func NewYogaHandler() *YogaHandler {
	return &YogaHandler{}
}

// PoseInfo describes one entry of the curated pose catalogue.
type PoseInfo struct {
	Name       string   `json:"name"`
	Sanskrit   string   `json:"sanskrit"`
	Difficulty string   `json:"difficulty"`
	Benefits   []string `json:"benefits"`
	HoldTime   string   `json:"holdTime"`
}

var poseCatalogue = []PoseInfo{
	{"Mountain Pose", "Tadasana", "beginner", []string{"improves posture", "strengthens thighs"}, "30-60s"},
	{"Tree Pose", "Vrikshasana", "beginner", []string{"improves balance", "strengthens ankles"}, "30s per side"},
	{"Downward Dog", "Adho Mukha Svanasana", "beginner", []string{"stretches hamstrings", "strengthens arms"}, "60s"},
	{"Warrior I", "Virabhadrasana I", "intermediate", []string{"opens hips", "strengthens legs"}, "45s per side"},
	{"Warrior II", "Virabhadrasana II", "intermediate", []string{"builds stamina", "stretches groin"}, "45s per side"},
	{"Triangle Pose", "Trikonasana", "intermediate", []string{"stretches spine", "relieves back pain"}, "30s per side"},
	{"Cobra Pose", "Bhujangasana", "beginner", []string{"opens chest", "strengthens spine"}, "30s"},
	{"Chair Pose", "Utkatasana", "intermediate", []string{"strengthens thighs", "tones core"}, "45s"},
	{"Crow Pose", "Bakasana", "advanced", []string{"builds arm strength", "improves focus"}, "20s"},
	{"Headstand", "Sirsasana", "advanced", []string{"improves circulation", "builds shoulder strength"}, "30s"},
}

// Poses returns the curated pose catalogue.
func (h *YogaHandler) Poses(c *gin.Context) {
	respondSuccess(c, http.StatusOK, "", gin.H{"poses": poseCatalogue})
}

// Detect returns a randomly generated demo verdict.
func (h *YogaHandler) Detect(c *gin.Context) {
	pose := poseCatalogue[rand.Intn(len(poseCatalogue))]
	respondSuccess(c, http.StatusOK, "demo detection, not a real analysis", gin.H{
		"pose":       pose.Name,
		"sanskrit":   pose.Sanskrit,
		"confidence": 60 + rand.Float64()*40,
		"demo":       true,
	})
}

// AnalyzeVideo returns a randomly generated demo session summary.
func (h *YogaHandler) AnalyzeVideo(c *gin.Context) {
	poses := make([]gin.H, 0, 3)
	for i := 0; i < 3; i++ {
		pose := poseCatalogue[rand.Intn(len(poseCatalogue))]
		poses = append(poses, gin.H{
			"pose":     pose.Name,
			"accuracy": 50 + rand.Float64()*50,
			"duration": 15 + rand.Intn(60),
		})
	}
	respondSuccess(c, http.StatusOK, "demo analysis, not a real analysis", gin.H{
		"poses":        poses,
		"overallScore": 50 + rand.Float64()*50,
		"demo":         true,
	})
}
