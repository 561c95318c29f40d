package analytics

import (
	"ouvidoria-analytics/src/domain"

	"go.mongodb.org/mongo-driver/bson"
)

// Padrões de layout reconhecidos no texto de data. Espelham os de
// domain.ParseEventDate; os dois lados têm de concordar.
const (
	isoLayoutPattern = `^\d{4}-\d{2}-\d{2}`
	brLayoutPattern  = `^\d{2}/\d{2}/\d{4}`
)

// eventDateExpr é a expressão de agregação que deriva a data do evento de um
// registro, equivalente em servidor ao domain.ParseEventDate:
//
//  1. dataCriacaoIso em layout YYYY-MM-DD;
//  2. dataDaCriacao em layout YYYY-MM-DD...;
//  3. dataDaCriacao em layout DD/MM/YYYY..., remontada para ISO.
//
// Cada candidato só é aceito quando o parse dá certo; texto no layout certo
// mas com data impossível (ex.: 2024-13-45) cai para o próximo candidato,
// igual ao lado Go. Sem candidato válido resolve para null e o registro sai
// das facetas temporais sem derrubar o pipeline.
func eventDateExpr() bson.M {
	return bson.M{"$let": bson.M{
		"vars": bson.M{
			"iso": safeStringExpr("$" + domain.DateFieldISO),
			"sec": safeStringExpr("$" + domain.DateFieldSecondary),
		},
		"in": bson.M{"$let": bson.M{
			"vars": bson.M{
				"isoDate":    isoLayoutDateExpr("$$iso"),
				"secIsoDate": isoLayoutDateExpr("$$sec"),
				"secBrDate":  brLayoutDateExpr("$$sec"),
			},
			"in": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{"case": bson.M{"$ne": bson.A{"$$isoDate", nil}}, "then": "$$isoDate"},
					bson.M{"case": bson.M{"$ne": bson.A{"$$secIsoDate", nil}}, "then": "$$secIsoDate"},
					bson.M{"case": bson.M{"$ne": bson.A{"$$secBrDate", nil}}, "then": "$$secBrDate"},
				},
				"default": nil,
			}},
		}},
	}}
}

// safeStringExpr devolve o valor do campo quando é string, senão string
// vazia; evita que $regexMatch exploda com tipos heterogêneos da base.
func safeStringExpr(fieldRef string) bson.M {
	return bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{bson.M{"$type": fieldRef}, "string"}},
		fieldRef,
		"",
	}}
}

// isoLayoutDateExpr parseia os dez primeiros caracteres (YYYY-MM-DD) do
// texto, ignorando qualquer sufixo de hora; null quando o texto não está no
// layout ou a data não existe no calendário.
func isoLayoutDateExpr(ref string) bson.M {
	return bson.M{"$cond": bson.A{
		bson.M{"$regexMatch": bson.M{"input": ref, "regex": isoLayoutPattern}},
		bson.M{"$dateFromString": bson.M{
			"dateString": bson.M{"$concat": bson.A{
				bson.M{"$substrCP": bson.A{ref, 0, 10}},
				"T00:00:00Z",
			}},
			"onError": nil,
		}},
		nil,
	}}
}

// brLayoutDateExpr remonta DD/MM/YYYY para ISO antes do parse; null quando o
// texto não está no layout ou a data não existe no calendário.
func brLayoutDateExpr(ref string) bson.M {
	return bson.M{"$cond": bson.A{
		bson.M{"$regexMatch": bson.M{"input": ref, "regex": brLayoutPattern}},
		bson.M{"$dateFromString": bson.M{
			// DD/MM/YYYY -> YYYY-MM-DDT00:00:00Z
			"dateString": bson.M{"$concat": bson.A{
				bson.M{"$substrCP": bson.A{ref, 6, 4}},
				"-",
				bson.M{"$substrCP": bson.A{ref, 3, 2}},
				"-",
				bson.M{"$substrCP": bson.A{ref, 0, 2}},
				"T00:00:00Z",
			}},
			"onError": nil,
		}},
		nil,
	}}
}
