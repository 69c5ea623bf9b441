// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command goscm is the REPL and batch driver for the interpreter core in
// internal/eval: it owns the things the core explicitly doesn't - reading
// lines, prompting, and turning an error into a process exit code.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/go-scm/goscm/internal/arena"
	"github.com/go-scm/goscm/internal/eval"
	"github.com/go-scm/goscm/internal/parser"
)

func main() {
	batch := flag.Bool("batch", false, "read all of stdin, then tokenize/parse/interpret it once, instead of an interactive REPL")
	flag.Parse()

	interactive := !*batch && isTerminal(os.Stdin)

	var err error
	if interactive {
		err = runRepl(os.Stdin, os.Stdout)
	} else {
		err = runBatch(os.Stdin, os.Stdout)
	}
	if err != nil {
		fmt.Println(errorLine(err))
		os.Exit(1)
	}
}

// errorLine formats err per the core's three-error-kind contract: each kind
// already renders its own "Untokenizable input..."/"Syntax error..." prefix,
// so an evaluation error (the default case) is the only one that needs one
// added here.
func errorLine(err error) string {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "Untokenizable input"), strings.HasPrefix(msg, "Syntax error"):
		return msg
	default:
		return "Evaluation error: " + msg
	}
}

func runBatch(in io.Reader, out io.Writer) error {
	src, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	a := arena.New()
	defer a.Terminate()
	global := eval.NewGlobal(a)

	forms, err := parser.Parse(a, string(src))
	if err != nil {
		return err
	}
	return eval.Interpret(a, global, forms, out)
}

// runRepl implements the REPL contract: prompt "> ", and while the
// accumulated input's parentheses don't balance, prompt ". " and keep
// reading lines before parsing and interpreting what has been typed so far.
func runRepl(in io.Reader, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "> ",
		Stdin:  io.NopCloser(in),
		Stdout: out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	a := arena.New()
	defer a.Terminate()
	global := eval.NewGlobal(a)

	var pending strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		pending.WriteString(line)
		pending.WriteByte('\n')

		if !parenthesesBalanced(pending.String()) {
			rl.SetPrompt(". ")
			continue
		}
		rl.SetPrompt("> ")

		src := pending.String()
		pending.Reset()

		forms, err := parser.Parse(a, src)
		if err != nil {
			log.Println(errorLine(err))
			continue
		}
		if err := eval.Interpret(a, global, forms, out); err != nil {
			log.Println(errorLine(err))
			continue
		}
	}
}

// parenthesesBalanced reports whether src has no more opening than closing
// parentheses, ignoring those inside string literals and line comments -
// good enough to decide when the REPL should stop accumulating continuation
// lines, without re-running the real tokenizer on partial input.
func parenthesesBalanced(src string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(src); i++ {
		switch c := src[i]; {
		case inString:
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == ';':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
	}
	return depth <= 0
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
