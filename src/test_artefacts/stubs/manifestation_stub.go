package stubs

import (
	"time"

	"ouvidoria-analytics/src/domain"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	statuses   = []string{"Aberta", "Em andamento", "Concluída", "Arquivada"}
	temas      = []string{"Saúde", "Educação", "Infraestrutura", "Transporte", "Segurança"}
	canais     = []string{"Portal", "Telefone", "Presencial", "Aplicativo"}
	tipos      = []string{"Reclamação", "Denúncia", "Sugestão", "Elogio", "Solicitação"}
	prioridade = []string{"Baixa", "Média", "Alta"}
)

type ManifestationStub struct {
	manifestation domain.Manifestation
}

func NewManifestationStub() ManifestationStub {
	now := time.Now().UTC()

	manifestation := domain.Manifestation{
		Protocolo:          gofakeit.UUID(),
		Status:             gofakeit.RandomString(statuses),
		Tema:               gofakeit.RandomString(temas),
		Assunto:            gofakeit.Sentence(3),
		Orgaos:             "Secretaria de " + gofakeit.RandomString(temas),
		Categoria:          gofakeit.RandomString(tipos),
		Bairro:             gofakeit.City(),
		Servidor:           gofakeit.Name(),
		UnidadeCadastro:    "Unidade " + gofakeit.LetterN(3),
		TipoDeManifestacao: gofakeit.RandomString(tipos),
		Canal:              gofakeit.RandomString(canais),
		Prioridade:         gofakeit.RandomString(prioridade),
		DataCriacaoISO:     now.Format("2006-01-02"),
		DataDaCriacao:      now.Format("2006-01-02"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	return ManifestationStub{manifestation: manifestation}
}

func (ms ManifestationStub) WithStatus(status string) ManifestationStub {
	ms.manifestation.Status = status
	return ms
}

func (ms ManifestationStub) WithTema(tema string) ManifestationStub {
	ms.manifestation.Tema = tema
	return ms
}

func (ms ManifestationStub) WithAssunto(assunto string) ManifestationStub {
	ms.manifestation.Assunto = assunto
	return ms
}

func (ms ManifestationStub) WithOrgaos(orgaos string) ManifestationStub {
	ms.manifestation.Orgaos = orgaos
	return ms
}

func (ms ManifestationStub) WithCanal(canal string) ManifestationStub {
	ms.manifestation.Canal = canal
	return ms
}

// WithCreationDate ajusta os três campos de data de forma coerente.
func (ms ManifestationStub) WithCreationDate(date time.Time) ManifestationStub {
	ms.manifestation.DataCriacaoISO = date.Format("2006-01-02")
	ms.manifestation.DataDaCriacao = date.Format("2006-01-02")
	ms.manifestation.CreatedAt = date
	return ms
}

// WithLegacyDate simula registro importado de planilha: sem dataCriacaoIso,
// só o texto DD/MM/YYYY.
func (ms ManifestationStub) WithLegacyDate(date time.Time) ManifestationStub {
	ms.manifestation.DataCriacaoISO = ""
	ms.manifestation.DataDaCriacao = date.Format("02/01/2006")
	ms.manifestation.CreatedAt = date
	return ms
}

// WithDateTexts ajusta os dois campos de texto de data sem tocar em createdAt.
// Aceita qualquer texto, inclusive lixo de carga corrompida.
func (ms ManifestationStub) WithDateTexts(iso, secondary string) ManifestationStub {
	ms.manifestation.DataCriacaoISO = iso
	ms.manifestation.DataDaCriacao = secondary
	return ms
}

func (ms ManifestationStub) Get() domain.Manifestation {
	return ms.manifestation
}
