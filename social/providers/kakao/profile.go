package kakao

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ondo-app/account/social"
)

type kakaoTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

type kakaoUserInfo struct {
	ID           int64          `json:"id"`
	ConnectedAt  string         `json:"connected_at"`
	Properties   map[string]any `json:"properties"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

type kakaoErrorResponse struct {
	Msg  string `json:"msg"`
	Code int    `json:"code"`
}

func mapProfile(info *kakaoUserInfo) *social.Profile {
	nickname := info.KakaoAccount.Profile.Nickname
	if nickname == "" {
		if v, ok := info.Properties["nickname"].(string); ok {
			nickname = v
		}
	}

	return &social.Profile{
		ProviderUserID: strconv.FormatInt(info.ID, 10),
		Provider:       "kakao",
		Nickname:       nickname,
		Email:          info.KakaoAccount.Email,
		ConnectedAt:    info.ConnectedAt,
		Raw:            info.Properties,
	}
}

func parseKakaoError(body []byte) (string, string) {
	var apiErr kakaoErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Msg != "" || apiErr.Code != 0) {
		return strconv.Itoa(apiErr.Code), apiErr.Msg
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "kakao request failed"
	}

	return "", msg
}
