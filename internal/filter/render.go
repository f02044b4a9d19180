package filter

func (f And) render(buf *stringBuilder) {
	buf.writeString("(&")
	for _, c := range f {
		c.render(buf)
	}
	buf.writeByte(')')
}

func (f Or) render(buf *stringBuilder) {
	buf.writeString("(|")
	for _, c := range f {
		c.render(buf)
	}
	buf.writeByte(')')
}

func (f Not) render(buf *stringBuilder) {
	buf.writeString("(!")
	f.Filter.render(buf)
	buf.writeByte(')')
}

func (f Equality) render(buf *stringBuilder) { renderAVA(buf, f.Attr, "=", f.Value) }

func (f GreaterOrEqual) render(buf *stringBuilder) { renderAVA(buf, f.Attr, ">=", f.Value) }

func (f LessOrEqual) render(buf *stringBuilder) { renderAVA(buf, f.Attr, "<=", f.Value) }

func (f Approx) render(buf *stringBuilder) { renderAVA(buf, f.Attr, "~=", f.Value) }

func renderAVA(buf *stringBuilder, attr, op, value string) {
	buf.writeByte('(')
	buf.writeString(attr)
	buf.writeString(op)
	buf.writeString(EscapeAssertionValue(value))
	buf.writeByte(')')
}

func (f Present) render(buf *stringBuilder) {
	buf.writeByte('(')
	buf.writeString(f.Attr)
	buf.writeString("=*)")
}

func (f Substring) render(buf *stringBuilder) {
	buf.writeByte('(')
	buf.writeString(f.Attr)
	buf.writeByte('=')
	if f.HasInitial {
		buf.writeString(EscapeAssertionValue(f.Initial))
	}
	buf.writeByte('*')
	for _, a := range f.Any {
		buf.writeString(EscapeAssertionValue(a))
		buf.writeByte('*')
	}
	if f.HasFinal {
		buf.writeString(EscapeAssertionValue(f.Final))
	}
	buf.writeByte(')')
}

func (f Extensible) render(buf *stringBuilder) {
	buf.writeByte('(')
	if f.HasType {
		buf.writeString(f.Type)
	}
	if f.DNAttributes {
		buf.writeString(":dn")
	}
	if f.HasRule {
		buf.writeByte(':')
		buf.writeString(f.Rule)
	}
	buf.writeString(":=")
	buf.writeString(EscapeAssertionValue(f.Value))
	buf.writeByte(')')
}
