package domain

// Field é um campo lógico do vocabulário de manifestações.
type Field string

const (
	FieldStatus             Field = "status"
	FieldTema               Field = "tema"
	FieldAssunto            Field = "assunto"
	FieldOrgaos             Field = "orgaos"
	FieldCategoria          Field = "categoria"
	FieldBairro             Field = "bairro"
	FieldServidor           Field = "servidor"
	FieldUnidadeCadastro    Field = "unidadeCadastro"
	FieldTipoDeManifestacao Field = "tipoDeManifestacao"
	FieldCanal              Field = "canal"
	FieldPrioridade         Field = "prioridade"
)

// Campos de data. dataCriacaoIso é a data real da manifestação (prioridade 1),
// dataDaCriacao é texto livre em layout variado (prioridade 2).
const (
	DateFieldISO       = "dataCriacaoIso"
	DateFieldSecondary = "dataDaCriacao"
)

// RelevantFields lista, em ordem estável, os campos cuja mudança afeta
// agregações e portanto dispara invalidação de cache.
func RelevantFields() []Field {
	return []Field{
		FieldStatus,
		FieldTema,
		FieldAssunto,
		FieldOrgaos,
		FieldCategoria,
		FieldBairro,
		FieldServidor,
		FieldUnidadeCadastro,
		FieldTipoDeManifestacao,
		FieldCanal,
		FieldPrioridade,
	}
}

// IsRelevantField reporta se name pertence ao vocabulário de campos lógicos.
func IsRelevantField(name string) bool {
	for _, f := range RelevantFields() {
		if string(f) == name {
			return true
		}
	}
	return false
}
