package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fieldErr — достаёт нарушение по имени поля.
func fieldErr(t *testing.T, err error, field string) FieldError {
	t.Helper()

	var verrs *Errors
	require.True(t, errors.As(err, &verrs), "want *Errors, got %T", err)

	for _, f := range verrs.Fields {
		if f.Field == field {
			return f
		}
	}

	t.Fatalf("no error for field %q in %v", field, verrs.Fields)
	return FieldError{}
}

// TestPost_LengthBounds — 2 и 1001 отклоняются, 3 и 1000 принимаются.
func TestPost_LengthBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    int
		ok   bool
	}{
		{"len-2", 2, false},
		{"len-3", 3, true},
		{"len-1000", 1000, true},
		{"len-1001", 1001, false},
	}

	for _, tt := range tests {
		err := Post(strings.Repeat("a", tt.n), "acc")
		if tt.ok {
			require.NoError(t, err, tt.name)
			continue
		}

		require.Error(t, err, tt.name)
		require.Equal(t, "post", fieldErr(t, err, "post").Field)
	}
}

// TestPost_CountsRunesNotBytes — многобайтовые символы считаются по одному.
func TestPost_CountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	require.NoError(t, Post("жук", "acc"))
	require.NoError(t, Post(strings.Repeat("ё", 1000), "acc"))
	require.Error(t, Post(strings.Repeat("ё", 1001), "acc"))
}

// TestPost_Required — пустой текст и пустой accountId дают два нарушения.
func TestPost_Required(t *testing.T) {
	t.Parallel()

	err := Post("", "   ")
	require.Error(t, err)

	require.Equal(t, "is required", fieldErr(t, err, "post").Message)
	require.Equal(t, "is required", fieldErr(t, err, "accountId").Message)

	var verrs *Errors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Fields, 2)
	require.Contains(t, err.Error(), "validation failed")
}

// TestPost_Messages — тексты ограничений min/max.
func TestPost_Messages(t *testing.T) {
	t.Parallel()

	require.Equal(t, "minimum 3 characters", fieldErr(t, Post("ab", "acc"), "post").Message)
	require.Equal(t, "maximum 1000 characters", fieldErr(t, Post(strings.Repeat("x", 1001), "acc"), "post").Message)
}

// TestComment_Bounds — форма комментария использует поле thread.
func TestComment_Bounds(t *testing.T) {
	t.Parallel()

	require.NoError(t, Comment("nice"))

	err := Comment("no")
	require.Error(t, err)
	require.Equal(t, "thread", fieldErr(t, err, "thread").Field)

	var verrs *Errors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "thread", verrs.First().Field)
}

// TestNormalize — только обрезка пробелов, разметка и сущности не трогаются.
func TestNormalize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello world", Normalize("  hello world  "))
	require.Equal(t, "x<y", Normalize("x<y"))
	require.Equal(t, "if a<b and c>d then swap", Normalize(" if a<b and c>d then swap "))
	require.Equal(t, "use &lt;b&gt; for bold", Normalize("use &lt;b&gt; for bold"))
	require.Equal(t, "<b>bold</b>", Normalize("<b>bold</b>"))
}

// TestPost_SpecialCharactersCount — символы разметки входят в длину как есть.
func TestPost_SpecialCharactersCount(t *testing.T) {
	t.Parallel()

	require.NoError(t, Post(Normalize("x<y"), "acc"))
	require.NoError(t, PostText("x<y"))
	require.NoError(t, Comment(Normalize("a&b")))
}

// TestPostText — проверяется только текст, accountId не требуется.
func TestPostText(t *testing.T) {
	t.Parallel()

	require.NoError(t, PostText("abc"))
	require.Equal(t, "minimum 3 characters", fieldErr(t, PostText("ab"), "post").Message)
	require.Equal(t, "is required", fieldErr(t, PostText(""), "post").Message)
	require.Equal(t, "maximum 1000 characters", fieldErr(t, PostText(strings.Repeat("x", 1001)), "post").Message)
}

// TestProfile — онбординг: имя/логин/био обязательны, картинка — необязательный URL.
func TestProfile(t *testing.T) {
	t.Parallel()

	in, err := Profile(ProfileInput{Name: " Ann Lee ", Username: " ann ", Bio: "hello there"})
	require.NoError(t, err)
	require.Equal(t, "Ann Lee", in.Name)
	require.Equal(t, "ann", in.Username)

	_, err = Profile(ProfileInput{Name: "Ann", Username: "ann", Bio: "bio", Image: "not a url"})
	require.Equal(t, "is invalid", fieldErr(t, err, "image").Message)

	_, err = Profile(ProfileInput{Username: "an", Bio: "bio"})
	require.Equal(t, "is required", fieldErr(t, err, "name").Message)
	require.Equal(t, "minimum 3 characters", fieldErr(t, err, "username").Message)

	_, err = Profile(ProfileInput{Name: "Ann", Username: "ann", Bio: "bio", Image: "https://img.example.com/a.png"})
	require.NoError(t, err)
}
