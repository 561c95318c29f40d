package domain

import "time"

// Manifestation é o documento de manifestação da collection records.
// O schema real é heterogêneo (importações de planilhas com colunas
// variadas); aqui só os campos que o motor de analytics consome.
type Manifestation struct {
	Protocolo          string    `bson:"protocolo,omitempty" json:"protocolo,omitempty"`
	Status             string    `bson:"status,omitempty" json:"status,omitempty"`
	Tema               string    `bson:"tema,omitempty" json:"tema,omitempty"`
	Assunto            string    `bson:"assunto,omitempty" json:"assunto,omitempty"`
	Orgaos             string    `bson:"orgaos,omitempty" json:"orgaos,omitempty"`
	Categoria          string    `bson:"categoria,omitempty" json:"categoria,omitempty"`
	Bairro             string    `bson:"bairro,omitempty" json:"bairro,omitempty"`
	Servidor           string    `bson:"servidor,omitempty" json:"servidor,omitempty"`
	UnidadeCadastro    string    `bson:"unidadeCadastro,omitempty" json:"unidadeCadastro,omitempty"`
	TipoDeManifestacao string    `bson:"tipoDeManifestacao,omitempty" json:"tipoDeManifestacao,omitempty"`
	Canal              string    `bson:"canal,omitempty" json:"canal,omitempty"`
	Prioridade         string    `bson:"prioridade,omitempty" json:"prioridade,omitempty"`
	DataCriacaoISO     string    `bson:"dataCriacaoIso,omitempty" json:"dataCriacaoIso,omitempty"`
	DataDaCriacao      string    `bson:"dataDaCriacao,omitempty" json:"dataDaCriacao,omitempty"`
	CreatedAt          time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt          time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
