package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sgexamenes/examenes-api/internal/domain/entity"
	"github.com/sgexamenes/examenes-api/internal/domain/repository"
	"github.com/sgexamenes/examenes-api/pkg/helpers"
)

var (
	ErrPreguntaNoEncontrada = errors.New("pregunta no encontrada")
	ErrCategoriaDuplicada   = errors.New("la categoría ya existe")
)

// PreguntaService manages the question bank: categories, questions, the
// Elasticsearch search index and GCS attachments. ES and GCS are optional;
// when absent the related features short-circuit instead of failing.
type PreguntaService struct {
	Repo      repository.PreguntaRepository
	GCS       *storage.Client
	GCSBucket string
	ES        *elasticsearch.Client
	ESIndex   string
	Logger    *logrus.Logger
}

func NewPreguntaService(repo repository.PreguntaRepository, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *PreguntaService {
	return &PreguntaService{Repo: repo, GCS: gcs, GCSBucket: gcsBucket, ES: es, ESIndex: esIndex, Logger: logger}
}

func (s *PreguntaService) CrearCategoria(ctx context.Context, nombre string) (*entity.Categoria, error) {
	c := &entity.Categoria{Nombre: nombre}
	if err := s.Repo.CreateCategoria(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrCategoriaDuplicada
		}
		return nil, err
	}
	return c, nil
}

func (s *PreguntaService) ListarCategorias(ctx context.Context) ([]entity.Categoria, error) {
	return s.Repo.ListCategorias(ctx)
}

func (s *PreguntaService) Crear(ctx context.Context, p *entity.Pregunta) error {
	if err := s.Repo.CreatePregunta(ctx, p); err != nil {
		return err
	}
	_ = s.indexar(ctx, p)
	return nil
}

func (s *PreguntaService) Obtener(ctx context.Context, id string) (*entity.Pregunta, error) {
	p, err := s.Repo.GetPregunta(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return nil, ErrPreguntaNoEncontrada
		}
		return nil, err
	}
	return p, nil
}

func (s *PreguntaService) Actualizar(ctx context.Context, p *entity.Pregunta) error {
	if err := s.Repo.UpdatePregunta(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return ErrPreguntaNoEncontrada
		}
		return err
	}
	_ = s.indexar(ctx, p)
	return nil
}

func (s *PreguntaService) Eliminar(ctx context.Context, id string) error {
	if err := s.Repo.DeletePregunta(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoEncontrado) {
			return ErrPreguntaNoEncontrada
		}
		return err
	}
	s.desindexar(ctx, id)
	return nil
}

func (s *PreguntaService) Listar(ctx context.Context, idCategoria string) ([]entity.Pregunta, error) {
	return s.Repo.ListPreguntas(ctx, idCategoria)
}

// SubirAdjunto uploads an attachment to GCS and stores its public URL on the
// question.
func (s *PreguntaService) SubirAdjunto(ctx context.Context, idPregunta string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("almacenamiento de adjuntos no configurado")
	}
	p, err := s.Obtener(ctx, idPregunta)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("preguntas", idPregunta, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	p.AdjuntoURL = url
	if err := s.Repo.UpdatePregunta(ctx, p); err != nil {
		return "", err
	}
	_ = s.indexar(ctx, p)
	return url, nil
}

func (s *PreguntaService) indexar(ctx context.Context, p *entity.Pregunta) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id_pregunta":  p.IDPregunta,
		"id_categoria": p.IDCategoria,
		"enunciado":    p.Enunciado,
		"puntaje":      p.Puntaje,
		"updated_at":   p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.IDPregunta, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("id_pregunta", p.IDPregunta).Warn("fallo al indexar pregunta")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("id_pregunta", p.IDPregunta).Warn("respuesta de error al indexar")
	}
	return nil
}

func (s *PreguntaService) desindexar(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if res, err := req.Do(c, s.ES); err == nil {
		_ = res.Body.Close()
	}
}

// Buscar performs a multi_match search over enunciado, boosting exact terms.
func (s *PreguntaService) Buscar(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"enunciado^2", "id_categoria"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
