package structscan

// handleNormal resolves one candidate byte found outside any
// string/comment context. p indexes into data.
func (s *Scanner) handleNormal(data []byte, p int, eof bool) (int, []int, bool, error) {
	b := data[p]
	switch b {
	case '"':
		if p+2 < len(data) && data[p+1] == '"' && data[p+2] == '"' {
			s.state.mode = modeInMultilineString
			return p + 3, []int{p}, false, nil
		}
		if p+2 >= len(data) && !eof {
			return 0, nil, true, nil
		}
		s.state.mode = modeInString
		return p + 1, []int{p}, false, nil

	case '#':
		j := p
		for j < len(data) && data[j] == '#' {
			j++
		}
		if j >= len(data) {
			if !eof {
				return 0, nil, true, nil
			}
			return j, nil, false, nil
		}
		hashCount := j - p
		if data[j] == '"' {
			if j+2 < len(data) && data[j+1] == '"' && data[j+2] == '"' {
				s.state.mode = modeInRawMultilineString
				s.state.rawHashCount = hashCount
				return j + 3, []int{p}, false, nil
			}
			if j+2 >= len(data) && !eof {
				return 0, nil, true, nil
			}
			s.state.mode = modeInRawString
			s.state.rawHashCount = hashCount
			return j + 1, []int{p}, false, nil
		}
		// '#'-introduced keyword (#true, #null, #-inf, ...): not
		// structurally special beyond the hash itself; the builder reads
		// the keyword text directly from the source span.
		return p + 1, nil, false, nil

	case '/':
		if p+1 >= len(data) {
			if !eof {
				return 0, nil, true, nil
			}
			return p + 1, []int{p}, false, nil
		}
		switch data[p+1] {
		case '/':
			s.state.mode = modeInLineComment
			return p + 2, []int{p}, false, nil
		case '*':
			s.state.mode = modeInBlockComment
			s.state.blockCommentDepth = 1
			return p + 2, []int{p}, false, nil
		case '-':
			return p + 2, []int{p}, false, nil
		}
		return p + 1, []int{p}, false, nil

	case '{', '}', '(', ')', ';', '=':
		return p + 1, []int{p}, false, nil

	case '\n', '\v', '\f':
		return p + 1, []int{p}, false, nil

	case '\r':
		if p+1 >= len(data) {
			if !eof {
				return 0, nil, true, nil
			}
			return p + 1, []int{p}, false, nil
		}
		if data[p+1] == '\n' {
			return p + 2, []int{p}, false, nil
		}
		return p + 1, []int{p}, false, nil
	}
	return p + 1, nil, false, nil
}

// handleInString resolves one candidate inside a quoted or multiline
// string. It never appends an index for escapes or interior content,
// only for the closing delimiter.
func (s *Scanner) handleInString(data []byte, p int, multiline, eof bool) (int, []int, bool, error) {
	b := data[p]
	if b == '\\' {
		if p+1 >= len(data) {
			if !eof {
				return 0, nil, true, nil
			}
			return p + 1, nil, false, nil
		}
		if data[p+1] != 'u' {
			return p + 2, nil, false, nil
		}
		j := p + 2
		if j >= len(data) {
			if !eof {
				return 0, nil, true, nil
			}
			return j, nil, false, nil
		}
		if data[j] != '{' {
			return j, nil, false, nil
		}
		k := j + 1
		for k < len(data) && data[k] != '}' {
			k++
		}
		if k >= len(data) {
			if !eof {
				return 0, nil, true, nil
			}
			return k, nil, false, nil
		}
		return k + 1, nil, false, nil
	}
	if b == '"' {
		if !multiline {
			s.state.mode = modeNormal
			return p + 1, []int{p}, false, nil
		}
		if p+2 < len(data) {
			if data[p+1] == '"' && data[p+2] == '"' {
				s.state.mode = modeNormal
				return p + 3, []int{p}, false, nil
			}
			return p + 1, nil, false, nil
		}
		if !eof {
			return 0, nil, true, nil
		}
		return p + 1, nil, false, nil
	}
	return p + 1, nil, false, nil
}

// handleInRawString resolves one candidate '"' inside a raw string,
// checking for the full close delimiter: closeLen quotes followed by
// exactly rawHashCount '#' characters.
func (s *Scanner) handleInRawString(data []byte, p int, eof bool) (int, []int, bool, error) {
	closeLen := 1
	if s.state.mode == modeInRawMultilineString {
		closeLen = 3
	}
	need := closeLen + s.state.rawHashCount
	if p+need > len(data) {
		if !eof {
			return 0, nil, true, nil
		}
		return p + 1, nil, false, nil
	}
	for i := 0; i < closeLen; i++ {
		if data[p+i] != '"' {
			return p + 1, nil, false, nil
		}
	}
	for i := 0; i < s.state.rawHashCount; i++ {
		if data[p+closeLen+i] != '#' {
			return p + 1, nil, false, nil
		}
	}
	s.state.mode = modeNormal
	s.state.rawHashCount = 0
	return p + need, []int{p}, false, nil
}

func (s *Scanner) handleInLineComment(data []byte, p int, eof bool) (int, []int, bool, error) {
	if data[p] == '\r' {
		if p+1 >= len(data) {
			if !eof {
				return 0, nil, true, nil
			}
			s.state.mode = modeNormal
			return p + 1, []int{p}, false, nil
		}
		s.state.mode = modeNormal
		if data[p+1] == '\n' {
			return p + 2, []int{p}, false, nil
		}
		return p + 1, []int{p}, false, nil
	}
	s.state.mode = modeNormal
	return p + 1, []int{p}, false, nil
}

func (s *Scanner) handleInBlockComment(data []byte, p int, eof bool) (int, []int, bool, error) {
	if p+1 >= len(data) {
		if !eof {
			return 0, nil, true, nil
		}
		return p + 1, nil, false, nil
	}
	a, b := data[p], data[p+1]
	if a == '/' && b == '*' {
		s.state.blockCommentDepth++
		return p + 2, nil, false, nil
	}
	if a == '*' && b == '/' {
		s.state.blockCommentDepth--
		if s.state.blockCommentDepth == 0 {
			s.state.mode = modeNormal
		}
		return p + 2, nil, false, nil
	}
	return p + 1, nil, false, nil
}
