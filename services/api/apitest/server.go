// Package apitest provides an in-memory fake of the clinic REST service for tests.
package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"vetclinic/models"

	"github.com/gin-gonic/gin"
)

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

type fault struct {
	method, path string
	status       int
	detail       string
	times        int
}

// Server is a fake backend. All exported methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	// Token is the bearer token every request must carry.
	Token string
	// Recommend answers GET /recommendations/. Nil yields 404.
	Recommend func(age, breedID int) (string, error)
	// StatusDetailOnly makes PATCH /appointments/{id}/status answer {"detail": ...} instead of the record.
	StatusDetailOnly bool
	// Latency delays every handler.
	Latency time.Duration

	mu            sync.Mutex
	nextID        int
	requests      []Request
	faults        []*fault
	pets          map[int]models.Pet
	breeds        map[int]models.Breed
	clinics       map[int]models.Clinic
	vaccines      map[int]models.Vaccine
	analysisTypes map[int]models.AnalysisType
	medicines     map[int]models.Medicine
	appointments  map[int]models.Appointment
	vaccinations  map[int]models.Vaccination
	analyses      map[int]models.Analysis
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		Token:         "test-token",
		nextID:        1,
		pets:          map[int]models.Pet{},
		breeds:        map[int]models.Breed{},
		clinics:       map[int]models.Clinic{},
		vaccines:      map[int]models.Vaccine{},
		analysisTypes: map[int]models.AnalysisType{},
		medicines:     map[int]models.Medicine{},
		appointments:  map[int]models.Appointment{},
		vaccinations:  map[int]models.Vaccination{},
		analyses:      map[int]models.Analysis{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(s.record, s.authenticate, s.inject)

	r.GET("/breeds/", func(c *gin.Context) { c.JSON(http.StatusOK, sorted(s, s.breeds)) })
	r.GET("/clinics/", func(c *gin.Context) { c.JSON(http.StatusOK, sorted(s, s.clinics)) })
	r.GET("/vaccines/", func(c *gin.Context) { c.JSON(http.StatusOK, sorted(s, s.vaccines)) })
	r.GET("/analysis-types/", func(c *gin.Context) { c.JSON(http.StatusOK, sorted(s, s.analysisTypes)) })
	r.GET("/medicines/", func(c *gin.Context) { c.JSON(http.StatusOK, sorted(s, s.medicines)) })
	r.GET("/vaccinations/", func(c *gin.Context) { c.JSON(http.StatusOK, sorted(s, s.vaccinations)) })
	r.GET("/analyses/", func(c *gin.Context) { c.JSON(http.StatusOK, sorted(s, s.analyses)) })
	r.GET("/pets/", func(c *gin.Context) { c.JSON(http.StatusOK, sorted(s, s.pets)) })
	r.GET("/appointments/", s.listAppointments)
	r.GET("/recommendations/", s.recommendation)

	r.POST("/pets/", create(s, s.pets, func(p *models.Pet, id int) { p.ID = id }))
	r.PUT("/pets/:id", update(s, s.pets, func(p *models.Pet, id int) { p.ID = id }))
	r.DELETE("/pets/:id", remove(s, s.pets, "Pet not found"))

	r.POST("/breeds/", create(s, s.breeds, func(b *models.Breed, id int) { b.ID = id }))
	r.PUT("/breeds/:id", update(s, s.breeds, func(b *models.Breed, id int) { b.ID = id }))
	r.DELETE("/breeds/:id", remove(s, s.breeds, "Breed not found"))

	r.POST("/clinics/", create(s, s.clinics, func(v *models.Clinic, id int) { v.ID = id }))
	r.PUT("/clinics/:id", update(s, s.clinics, func(v *models.Clinic, id int) { v.ID = id }))
	r.DELETE("/clinics/:id", remove(s, s.clinics, "Clinic not found"))

	r.POST("/vaccines/", create(s, s.vaccines, func(v *models.Vaccine, id int) { v.ID = id }))
	r.PUT("/vaccines/:id", update(s, s.vaccines, func(v *models.Vaccine, id int) { v.ID = id }))
	r.DELETE("/vaccines/:id", remove(s, s.vaccines, "Vaccine not found"))

	r.POST("/analysis-types/", create(s, s.analysisTypes, func(v *models.AnalysisType, id int) { v.ID = id }))
	r.PUT("/analysis-types/:id", update(s, s.analysisTypes, func(v *models.AnalysisType, id int) { v.ID = id }))
	r.DELETE("/analysis-types/:id", remove(s, s.analysisTypes, "Analysis type not found"))

	r.POST("/medicines/", create(s, s.medicines, func(v *models.Medicine, id int) { v.ID = id }))
	r.PUT("/medicines/:id", update(s, s.medicines, func(v *models.Medicine, id int) { v.ID = id }))
	r.DELETE("/medicines/:id", remove(s, s.medicines, "Medicine not found"))

	r.POST("/vaccinations/", create(s, s.vaccinations, func(v *models.Vaccination, id int) { v.ID = id }))
	r.DELETE("/vaccinations/:id", remove(s, s.vaccinations, "Vaccination not found"))

	r.POST("/analyses/", create(s, s.analyses, func(v *models.Analysis, id int) { v.ID = id }))
	r.DELETE("/analyses/:id", remove(s, s.analyses, "Analysis not found"))

	r.POST("/appointments/", s.createAppointment)
	r.PUT("/appointments/:id", s.updateAppointment)
	r.PATCH("/appointments/:id/status", s.patchStatus)
	r.DELETE("/appointments/:id", remove(s, s.appointments, "Appointment not found"))
	return r
}

func (s *Server) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Auth:   c.GetHeader("Authorization"),
		Body:   body,
	})
	s.mu.Unlock()
	if s.Latency > 0 {
		time.Sleep(s.Latency)
	}
	c.Next()
}

func (s *Server) authenticate(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+s.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	c.Next()
}

func (s *Server) inject(c *gin.Context) {
	s.mu.Lock()
	for _, f := range s.faults {
		if f.times > 0 && f.method == c.Request.Method && f.path == c.Request.URL.Path {
			f.times--
			s.mu.Unlock()
			c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
			return
		}
	}
	s.mu.Unlock()
	c.Next()
}

// Fail makes the next `times` calls to method+path answer status with body {"detail": detail}.
func (s *Server) Fail(method, path string, status int, detail string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, &fault{method: method, path: path, status: status, detail: detail, times: times})
}

// Requests returns recorded calls, optionally filtered by method and path ("" matches any).
func (s *Server) Requests(method, path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// SetNextID controls the id handed to the next created record.
func (s *Server) SetNextID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = id
}

func (s *Server) AddPet(p models.Pet) models.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.pets[p.ID] = p
	return p
}

func (s *Server) AddBreed(b models.Breed) models.Breed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	s.breeds[b.ID] = b
	return b
}

func (s *Server) AddClinic(v models.Clinic) models.Clinic {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.id()
	}
	s.clinics[v.ID] = v
	return v
}

func (s *Server) AddVaccine(v models.Vaccine) models.Vaccine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.id()
	}
	s.vaccines[v.ID] = v
	return v
}

func (s *Server) AddAnalysisType(v models.AnalysisType) models.AnalysisType {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.id()
	}
	s.analysisTypes[v.ID] = v
	return v
}

func (s *Server) AddAppointment(a models.Appointment) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.id()
	}
	s.appointments[a.ID] = a
	return a
}

func (s *Server) Appointments() []models.Appointment { return sorted(s, s.appointments) }
func (s *Server) Vaccinations() []models.Vaccination { return sorted(s, s.vaccinations) }
func (s *Server) Analyses() []models.Analysis        { return sorted(s, s.analyses) }
func (s *Server) Pets() []models.Pet                 { return sorted(s, s.pets) }
func (s *Server) Vaccines() []models.Vaccine         { return sorted(s, s.vaccines) }
func (s *Server) Medicines() []models.Medicine       { return sorted(s, s.medicines) }

func (s *Server) listAppointments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		a.Procedure = s.procedureFor(a.ID)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) procedureFor(apptID int) *models.ProcedureInfo {
	for _, v := range s.vaccinations {
		if v.AppointmentID == apptID {
			return &models.ProcedureInfo{Type: "Vaccination", Name: s.vaccines[v.VaccineID].Name}
		}
	}
	for _, a := range s.analyses {
		if a.AppointmentID == apptID {
			return &models.ProcedureInfo{Type: "Analysis", Name: s.analysisTypes[a.AnalysisTypeID].Name}
		}
	}
	return nil
}

func validDateTime(v string) bool {
	v = strings.Replace(v, "Z", "+00:00", 1)
	for _, layout := range []string{"2006-01-02T15:04:05-07:00", "2006-01-02T15:04:05.000-07:00", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func (s *Server) createAppointment(c *gin.Context) {
	var in models.AppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if !validDateTime(in.ScheduledAt) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid datetime format for scheduled_at"})
		return
	}
	s.mu.Lock()
	a := models.Appointment{
		ID:               s.id(),
		PetID:            in.PetID,
		ScheduledAt:      in.ScheduledAt,
		ClinicID:         in.ClinicID,
		Status:           in.Status,
		ConclusionStatus: in.ConclusionStatus,
		Conclusion:       in.Conclusion,
	}
	s.appointments[a.ID] = a
	s.mu.Unlock()
	c.JSON(http.StatusOK, a)
}

func (s *Server) updateAppointment(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var in models.AppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return
	}
	a := models.Appointment{
		ID:               id,
		PetID:            in.PetID,
		ScheduledAt:      in.ScheduledAt,
		ClinicID:         in.ClinicID,
		Status:           in.Status,
		ConclusionStatus: in.ConclusionStatus,
		Conclusion:       in.Conclusion,
	}
	s.appointments[id] = a
	c.JSON(http.StatusOK, a)
}

func (s *Server) patchStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var in models.StatusUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Appointment not found"})
		return
	}
	a.Status = in.Status
	s.appointments[id] = a
	if s.StatusDetailOnly {
		c.JSON(http.StatusOK, gin.H{"detail": "Status updated"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) recommendation(c *gin.Context) {
	age, _ := strconv.Atoi(c.Query("age"))
	breedID, _ := strconv.Atoi(c.Query("breed_id"))
	if s.Recommend == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No recommendation"})
		return
	}
	text, err := s.Recommend(age, breedID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"age": age, "breed_id": breedID, "recommendations": text})
}

func sorted[T any](s *Server, m map[int]T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func create[T any](s *Server, m map[int]T, setID func(*T, int)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var v T
		if err := c.ShouldBindJSON(&v); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		s.mu.Lock()
		id := s.id()
		setID(&v, id)
		m[id] = v
		s.mu.Unlock()
		c.JSON(http.StatusOK, v)
	}
}

func update[T any](s *Server, m map[int]T, setID func(*T, int)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		var v T
		if err := c.ShouldBindJSON(&v); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := m[id]; !ok {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
			return
		}
		setID(&v, id)
		m[id] = v
		c.JSON(http.StatusOK, v)
	}
}

func remove[T any](s *Server, m map[int]T, notFound string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := m[id]; !ok {
			c.JSON(http.StatusNotFound, gin.H{"detail": notFound})
			return
		}
		delete(m, id)
		c.JSON(http.StatusOK, gin.H{"detail": "deleted"})
	}
}
