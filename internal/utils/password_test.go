package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePasswordPolicy(t *testing.T) {
	t.Run("senha sem maiúscula e sem símbolo", func(t *testing.T) {
		violations := ValidatePasswordPolicy("abc12345")
		require.Len(t, violations, 2)
		require.Contains(t, strings.Join(violations, "; "), "maiúscula")
		require.Contains(t, strings.Join(violations, "; "), "símbolo")
	})

	t.Run("senha válida", func(t *testing.T) {
		require.Empty(t, ValidatePasswordPolicy("Abc123!@"))
	})

	t.Run("todas as regras violadas de uma vez", func(t *testing.T) {
		violations := ValidatePasswordPolicy("abc")
		require.Len(t, violations, 4)
	})

	t.Run("curta mas com todas as classes", func(t *testing.T) {
		violations := ValidatePasswordPolicy("Ab1!")
		require.Len(t, violations, 1)
		require.Contains(t, violations[0], "mínimo")
	})
}

func TestPasswordStrength(t *testing.T) {
	t.Run("senha comum só de dígitos zera", func(t *testing.T) {
		require.Equal(t, 0, PasswordStrength("123456"))
	})

	t.Run("senha vazia zera", func(t *testing.T) {
		require.Equal(t, 0, PasswordStrength(""))
	})

	t.Run("senha forte pontua mais que senha fraca", func(t *testing.T) {
		weak := PasswordStrength("abcdefgh")
		strong := PasswordStrength("Tr4ker!Demanda#2026")
		require.Greater(t, strong, weak)
	})

	t.Run("pontuação sempre dentro de [0, 100]", func(t *testing.T) {
		for _, password := range []string{
			"", "a", "123456", "aaaaaaaaaaaaaaaaaaaaaa",
			"Abc123!@", "Tr4ker!Demanda#2026", "senha123",
		} {
			score := PasswordStrength(password)
			require.GreaterOrEqual(t, score, 0, "senha %q", password)
			require.LessOrEqual(t, score, 100, "senha %q", password)
		}
	})

	t.Run("repetição de caracteres penaliza", func(t *testing.T) {
		require.Greater(t, PasswordStrength("Abcdef1!"), PasswordStrength("Aaaaaa1!"))
	})
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Abc123!@")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "Abc123!@", hash)

	require.True(t, CheckPassword(hash, "Abc123!@"))
	require.False(t, CheckPassword(hash, "outra-senha"))
}

func TestValidateInitialPassword(t *testing.T) {
	require.Error(t, ValidateInitialPassword("12345"))
	require.NoError(t, ValidateInitialPassword("123456"))
}
