package token

var keywords = map[string]Kind{
	"namespace": KwNamespace,
	"enum":      KwEnum,
	"flags":     KwFlags,
	"record":    KwRecord,
	"interface": KwInterface,
	"main":      KwMain,
	"ext":       KwExt,
	"function":  KwFunction,
	"error":     KwError,
	"const":     KwConst,
	"extern":    KwExtern,
	"static":    KwStatic,
	"async":     KwAsync,
	"property":  KwProperty,
	"throws":    KwThrows,
	"deriving":  KwDeriving,
	"true":      KwTrue,
	"false":     KwFalse,
}

// LookupKeyword returns the keyword kind for ident.
// Keywords are case-sensitive; only the lowercase spelling is recognized.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
