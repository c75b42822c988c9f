package utils

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordSymbols é o conjunto fixo de símbolos aceitos pela política.
const PasswordSymbols = "!@#$%^&*()-_=+[]{};:,.<>?/"

// InitialPasswordMinLength vale apenas para senhas provisórias geradas ou
// definidas fora do fluxo normal de troca (criação de conta, seed).
const InitialPasswordMinLength = 6

// PasswordPolicyMinLength vale para o fluxo de troca de senha.
const PasswordPolicyMinLength = 8

// senhas comuns penalizadas pela pontuação de força
var commonPasswords = []string{
	"123456", "123456789", "12345678", "1234567890", "102030",
	"senha", "senha123", "password", "qwerty", "abc123",
	"111111", "101010", "brasil", "mudar123",
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compara a senha em texto com o hash armazenado.
// Divergência é um resultado normal (false), não um erro.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func ValidateInitialPassword(password string) error {
	if len(password) < InitialPasswordMinLength {
		return fmt.Errorf("a senha deve ter no mínimo %d caracteres", InitialPasswordMinLength)
	}
	return nil
}

// ValidatePasswordPolicy aplica a política de troca de senha e devolve todas
// as regras violadas de uma vez, para que o usuário corrija tudo numa única
// tentativa. Lista vazia significa senha aprovada.
func ValidatePasswordPolicy(password string) []string {
	var violations []string

	if len(password) < PasswordPolicyMinLength {
		violations = append(violations, fmt.Sprintf("mínimo de %d caracteres", PasswordPolicyMinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, char):
			hasSymbol = true
		}
	}

	if !hasUpper {
		violations = append(violations, "pelo menos 1 letra maiúscula")
	}
	if !hasLower {
		violations = append(violations, "pelo menos 1 letra minúscula")
	}
	if !hasDigit {
		violations = append(violations, "pelo menos 1 número")
	}
	if !hasSymbol {
		violations = append(violations, "pelo menos 1 símbolo ("+PasswordSymbols+")")
	}

	return violations
}

// PasswordStrength calcula uma pontuação de 0 a 100 apenas informativa,
// exibida ao usuário como dica. Não é usada como critério de aprovação.
func PasswordStrength(password string) int {
	if password == "" {
		return 0
	}

	score := 0

	// bônus de comprimento, limitado a 16 caracteres
	length := len(password)
	if length > 16 {
		length = 16
	}
	score += length * 3

	var upper, lower, digit, symbol, letters, digits int
	charCount := map[rune]int{}
	for _, char := range password {
		charCount[char]++
		switch {
		case unicode.IsUpper(char):
			upper++
			letters++
		case unicode.IsLower(char):
			lower++
			letters++
		case unicode.IsDigit(char):
			digit++
			digits++
		case strings.ContainsRune(PasswordSymbols, char):
			symbol++
		}
	}

	for _, count := range []int{upper, lower, digit, symbol} {
		if count > 0 {
			score += 10
		}
	}
	if len(password) >= 12 {
		score += 12
	}

	// penalidades
	if digits == len(password) {
		score -= 20
	}
	if letters == len(password) {
		score -= 15
	}
	for _, count := range charCount {
		if count >= 3 {
			score -= 15
			break
		}
	}

	lowered := strings.ToLower(password)
	for _, common := range commonPasswords {
		if lowered == common {
			score -= 40
			break
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score
}
