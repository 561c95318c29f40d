package domain

import "time"

// Policy concentra a configuração estática do motor de cache: TTL por
// endpoint e padrões de invalidação por campo lógico. É montada uma vez na
// subida do processo e injetada no orquestrador e no watcher; não muda em
// runtime.
//
// Os padrões são prefixos ancorados de chave com um único curinga final
// ("endpoint:*"). Invalidar a mais é aceitável (recomputação extra);
// invalidar a menos nunca é (dado velho servido dentro do TTL).
type Policy struct {
	ttls       map[string]time.Duration
	defaultTTL time.Duration
	patterns   map[Field][]string
}

// NewPolicy monta uma Policy a partir das tabelas dadas. As tabelas são
// copiadas; o chamador pode descartar os mapas de entrada.
func NewPolicy(ttls map[string]time.Duration, defaultTTL time.Duration, patterns map[Field][]string) Policy {
	ttlCopy := make(map[string]time.Duration, len(ttls))
	for endpoint, ttl := range ttls {
		ttlCopy[endpoint] = ttl
	}

	patternCopy := make(map[Field][]string, len(patterns))
	for field, pats := range patterns {
		patternCopy[field] = append([]string(nil), pats...)
	}

	return Policy{ttls: ttlCopy, defaultTTL: defaultTTL, patterns: patternCopy}
}

// DefaultPolicy é a tabela usada em produção. TTLs curtos são viáveis porque
// o watcher derruba entradas afetadas antes do vencimento na maioria das
// escritas; o TTL vira só a rede de segurança quando o feed está fora.
func DefaultPolicy() Policy {
	ttls := map[string]time.Duration{
		"overview":  5 * time.Second,
		"dashboard": 5 * time.Second,
		"status":    15 * time.Second,
		"tema":      15 * time.Second,
		"assunto":   15 * time.Second,
		"categoria": 15 * time.Second,
		"bairro":    15 * time.Second,
		"orgaoMes":  30 * time.Second,
		"distinct":  300 * time.Second,
		"sla":       60 * time.Second,
	}

	patterns := map[Field][]string{
		FieldStatus:             {"status:*", "statusOverview:*"},
		FieldTema:               {"tema:*", "byTheme:*"},
		FieldAssunto:            {"assunto:*", "bySubject:*"},
		FieldOrgaos:             {"orgaoMes:*", "orgaos:*"},
		FieldCategoria:          {"categoria:*"},
		FieldBairro:             {"bairro:*"},
		FieldServidor:           {"servidor:*"},
		FieldUnidadeCadastro:    {"unidadeCadastro:*", "uac:*"},
		FieldTipoDeManifestacao: {"tipo:*"},
		FieldCanal:              {"canal:*"},
		FieldPrioridade:         {"prioridade:*"},
	}

	// Todo campo relevante derruba também o overview combinado e o dashboard
	for _, field := range RelevantFields() {
		patterns[field] = append(patterns[field], "overview:*", "dashboard:*")
	}

	return NewPolicy(ttls, 15*time.Second, patterns)
}

// TTLFor devolve o TTL configurado para o endpoint, ou o default quando o
// endpoint não está listado.
func (p Policy) TTLFor(endpoint string) time.Duration {
	if ttl, ok := p.ttls[endpoint]; ok {
		return ttl
	}
	return p.defaultTTL
}

// PatternsFor devolve os padrões de invalidação do campo. A fatia retornada
// é uma cópia.
func (p Policy) PatternsFor(field Field) []string {
	return append([]string(nil), p.patterns[field]...)
}
