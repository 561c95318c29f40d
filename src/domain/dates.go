package domain

import (
	"regexp"
	"time"
)

// Layouts reconhecidos no campo secundário de data. A detecção é por
// padrão do texto, nunca por locale ou configuração.
var (
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	brDatePattern  = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})`)
)

// ParseEventDate resolve a data do evento de um registro a partir das duas
// representações possíveis, em ordem de prioridade:
//
//  1. dataCriacaoIso (YYYY-MM-DD), quando presente;
//  2. dataDaCriacao em layout YYYY-MM-DD... ou DD/MM/YYYY...
//
// Registros sem data parseável ficam fora das facetas temporais mas seguem
// contando nas demais; por isso o retorno é (zero, false), nunca erro e
// nunca um default como "agora".
func ParseEventDate(dataCriacaoISO, dataDaCriacao string) (time.Time, bool) {
	if dataCriacaoISO != "" {
		if t, ok := parseDateText(dataCriacaoISO); ok {
			return t, true
		}
	}

	if dataDaCriacao != "" {
		return parseDateText(dataDaCriacao)
	}

	return time.Time{}, false
}

// EventDateOf aplica ParseEventDate a um documento cru (ex.: fullDocument de
// um evento do change stream).
func EventDateOf(doc map[string]interface{}) (time.Time, bool) {
	iso, _ := doc[DateFieldISO].(string)
	secondary, _ := doc[DateFieldSecondary].(string)
	return ParseEventDate(iso, secondary)
}

func parseDateText(text string) (time.Time, bool) {
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		t, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}

	if m := brDatePattern.FindStringSubmatch(text); m != nil {
		// DD/MM/YYYY -> YYYY-MM-DD
		t, err := time.Parse("2006-01-02", m[3]+"-"+m[2]+"-"+m[1])
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}

	return time.Time{}, false
}
