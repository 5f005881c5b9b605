package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/specialistfinder/backend/internal/catalog"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
)

const testCatalogYAML = `
specialties:
  - name: "Cardiologist"
    symptoms: ["Chest pain", "Irregular heartbeat"]
  - name: "Dermatologist"
    symptoms: ["Skin rash", "Acne"]
  - name: "Neurologist"
    symptoms: ["Headache", "Dizziness"]
`

func testCatalog() *catalog.Catalog {
	cat, err := catalog.Parse([]byte(testCatalogYAML))
	if err != nil {
		panic(err)
	}
	return cat
}

type mockInterpreter struct {
	mock.Mock
}

func (m *mockInterpreter) InterpretSymptoms(ctx context.Context, symptoms []string, allowed []string) (*providers.SymptomInterpretation, error) {
	args := m.Called(ctx, symptoms, allowed)
	out, _ := args.Get(0).(*providers.SymptomInterpretation)
	return out, args.Error(1)
}

type mockSummaryGenerator struct {
	mock.Mock
}

func (m *mockSummaryGenerator) GeneratePatientSummary(ctx context.Context, intake *entities.PatientIntake) (string, error) {
	args := m.Called(ctx, intake)
	return args.String(0), args.Error(1)
}

type mockPlaces struct {
	mock.Mock
}

func (m *mockPlaces) NearbySearch(ctx context.Context, center entities.Location, radiusMeters int, keyword string) ([]*providers.Place, error) {
	args := m.Called(ctx, center, radiusMeters, keyword)
	out, _ := args.Get(0).([]*providers.Place)
	return out, args.Error(1)
}

func (m *mockPlaces) TextSearch(ctx context.Context, query string) ([]*providers.Place, error) {
	args := m.Called(ctx, query)
	out, _ := args.Get(0).([]*providers.Place)
	return out, args.Error(1)
}

type mockHospitalIndex struct {
	mock.Mock
}

func (m *mockHospitalIndex) Index(ctx context.Context, hospitals []*entities.Hospital) error {
	return m.Called(ctx, hospitals).Error(0)
}

func (m *mockHospitalIndex) Search(ctx context.Context, query repositories.HospitalQuery) ([]*entities.Hospital, error) {
	args := m.Called(ctx, query)
	out, _ := args.Get(0).([]*entities.Hospital)
	return out, args.Error(1)
}

type mockRecognizer struct {
	mock.Mock
}

func (m *mockRecognizer) Recognize(ctx context.Context, text string) ([]entities.NEREntity, error) {
	args := m.Called(ctx, text)
	out, _ := args.Get(0).([]entities.NEREntity)
	return out, args.Error(1)
}

type mockTextExtractor struct {
	mock.Mock
}

func (m *mockTextExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

// memoryMapStore records every Put.
type memoryMapStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryMapStore() *memoryMapStore {
	return &memoryMapStore{objects: map[string][]byte{}}
}

func (s *memoryMapStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), content...)
	return nil
}

func (s *memoryMapStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, providers.ErrObjectNotFound
	}
	return data, nil
}

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []*entities.SearchEvent
}

func (b *recordingBus) Publish(ctx context.Context, channel string, event *entities.SearchEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error) {
	return make(chan *entities.SearchEvent), nil
}

func (b *recordingBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) Events() []*entities.SearchEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entities.SearchEvent(nil), b.events...)
}
