package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

var commonFirstNames = []string{
	"Ana", "João", "Maria", "José", "Carlos", "Fernanda", "Paulo", "Juliana",
	"Lucas", "Camila", "Rafael", "Beatriz", "Marcos", "Larissa", "Pedro",
	"Aline", "Bruno", "Patrícia", "Gabriel", "Renata",
}

var commonSurnames = []string{
	"Silva", "Santos", "Oliveira", "Souza", "Lima", "Pereira", "Costa",
	"Ferreira", "Rodrigues", "Almeida", "Nascimento", "Carvalho", "Gomes",
	"Martins", "Araújo", "Ribeiro", "Barbosa", "Rocha", "Dias", "Moreira",
}

func GenerateRandomFullName() string {
	first := commonFirstNames[rand.Intn(len(commonFirstNames))]
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	if rand.Intn(2) == 0 {
		surname += " " + commonSurnames[rand.Intn(len(commonSurnames))]
	}
	return first + " " + surname
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "â", "a", "ã", "a", "à", "a",
	"é", "e", "ê", "e", "í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ç", "c",
)

// GenerateEmailFromName monta um e-mail institucional a partir do nome,
// com dígitos aleatórios para evitar colisões no seed.
func GenerateEmailFromName(fullName string, emailDomain string) string {
	slug := accentReplacer.Replace(strings.ToLower(fullName))
	slug = strings.ReplaceAll(slug, " ", ".")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		slug += string(digits[rand.Intn(len(digits))])
	}

	return slug + "@" + emailDomain
}

var roles = []domain.Role{
	domain.RoleStandard,
	domain.RoleSchoolManager,
	domain.RoleSupervisor,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomUser(password string, emailDomain string) (*domain.User, error) {
	fullName := GenerateRandomFullName()
	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         fullName,
		Email:        GenerateEmailFromName(fullName, emailDomain),
		PasswordHash: passwordHash,
		Role:         GenerateRandomRole(),
		IsActive:     true,
	}

	return user, nil
}
